package shared

import "time"

const (
	// Platform defaults
	DefaultBaseURL   = "https://www.yuketang.cn"
	DefaultSocketURL = "wss://www.yuketang.cn/ws/"
	DefaultOrigin    = "https://www.yuketang.cn"
	DefaultReferer   = "https://www.yuketang.cn/v2/web/index"

	// Request behaviour
	DefaultTimeout      = 30 * time.Second
	DefaultRetryCount   = 3
	DefaultRetryWait    = 1 * time.Second
	DefaultRequestDelay = 2 * time.Second

	// Video simulation
	DefaultHeartbeatInterval = 5 * time.Second
	DefaultPlaybackSpeed     = 1.0
	DefaultVideoLength       = 600.0 // seconds, last resort when the platform never reports one
	LengthRetryCount         = 5
	LengthRetryWait          = 1 * time.Second
	VerifyRetryCount         = 3

	// Slideshow session
	DefaultSlideHeartbeat = 30 * time.Second
	MinPageDwell          = 1.0
	MaxPageDwell          = 2.0

	// File layout
	DefaultCookieDir = "cookies"
	DefaultCacheDir  = "cache"
)

// Question types as the platform encodes them.
const (
	QuestionTypeSingleChoice = 0
	QuestionTypeMultiChoice  = 1
	QuestionTypeFillBlank    = 2
	QuestionTypeJudgement    = 3
	QuestionTypeEssay        = 4
)

// OptionKeyAlphabet is the set of valid choice option keys.
const OptionKeyAlphabet = "ABCDEF"
