// services/credential.go
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/shared"
	log "github.com/sirupsen/logrus"
)

// CredentialService loads one cookie identity from the cookie directory and
// exposes it to every outbound call. One process serves one identity at a
// time; the completion cache is keyed off the identity name.
type CredentialService struct {
	context.DefaultService

	cookieDir  string
	cookieFile string

	cookie   string
	identity string
}

const CREDENTIAL_SVC = "credential_svc"

func (svc CredentialService) Id() string {
	return CREDENTIAL_SVC
}

func (svc *CredentialService) Configure(ctx *context.Context) error {
	svc.cookieDir = os.Getenv("COOKIE_DIR")
	if svc.cookieDir == "" {
		svc.cookieDir = shared.DefaultCookieDir
	}
	svc.cookieFile = os.Getenv("COOKIE_FILE")

	return svc.DefaultService.Configure(ctx)
}

func (svc *CredentialService) Start() error {
	path := svc.cookieFile
	if path == "" {
		var err error
		path, err = svc.firstCookieFile()
		if err != nil {
			return err
		}
	} else if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join(svc.cookieDir, path)
	}

	cookie, err := LoadCookie(path)
	if err != nil {
		return err
	}

	svc.cookie = cookie
	svc.identity = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	log.WithField("identity", svc.identity).Info("Credential loaded")
	return nil
}

// Cookie returns the raw cookie header value for the active identity.
func (svc *CredentialService) Cookie() string {
	return svc.cookie
}

// Identity is the credential's file name without extension; it keys the
// completion cache file.
func (svc *CredentialService) Identity() string {
	return svc.identity
}

func (svc *CredentialService) firstCookieFile() (string, error) {
	entries, err := os.ReadDir(svc.cookieDir)
	if err != nil {
		return "", fmt.Errorf("read cookie dir %s: %w", svc.cookieDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no cookie files in %s", svc.cookieDir)
	}
	sort.Strings(files)
	return filepath.Join(svc.cookieDir, files[0]), nil
}

// LoadCookie reads a credential file in any of the shapes it has shipped in:
// {"cookie": "..."}, a name/value map, a browser export list, or the raw
// cookie string itself.
func LoadCookie(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(string(raw))

	var wrapper dto.CookieFile
	if err := shared.JSON().Unmarshal(raw, &wrapper); err == nil && wrapper.Cookie != "" {
		return wrapper.Cookie, nil
	}

	var pairs []dto.CookiePair
	if err := shared.JSON().Unmarshal(raw, &pairs); err == nil && len(pairs) > 0 {
		parts := make([]string, 0, len(pairs))
		for _, p := range pairs {
			if p.Name == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", p.Name, p.Value))
		}
		return strings.Join(parts, "; "), nil
	}

	var kv map[string]string
	if err := shared.JSON().Unmarshal(raw, &kv); err == nil && len(kv) > 0 {
		keys := make([]string, 0, len(kv))
		for k := range kv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(kv))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, kv[k]))
		}
		return strings.Join(parts, "; "), nil
	}

	if content == "" {
		return "", fmt.Errorf("cookie file %s is empty", path)
	}
	return content, nil
}
