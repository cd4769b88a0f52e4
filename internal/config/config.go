package config

import "net/http/cookiejar"

type Config struct {
	Elasticsearch struct {
		Enabled            bool   `json:"enabled"`
		Username           string `json:"username"`
		Password           string `json:"password"`
		Address            string `json:"address"`
		InsecureSkipVerify bool   `json:"insecure_skip_verify"`
	} `json:"elasticsearch"`

	Rod struct {
		UserMode                         bool   `json:"user_mode"`
		UserDataDir                      string `json:"user_data_dir"`
		Headless                         bool   `json:"headless"`
		DisableBlinkFeatures             string `json:"disable_blink_features"`
		Incognito                        bool   `json:"incognito"`
		DisableDevShmUsage               bool   `json:"disable_dev_shm_usage"`
		NoSandbox                        bool   `json:"no_sandbox"`
		UserAgent                        string `json:"user_agent"`
		Leakless                         bool   `json:"leakless"`
		Bin                              string `json:"bin"`
		DisableBackgroundNetworking      bool   `json:"disable_background_networking"`
		DisableBackgroundTimerThrottling bool   `json:"disable_background_timer_throttling"`
		RemoteDebuggingPort              int    `json:"remote_debugging_port"`
		PagePoolSize                     int    `json:"page_pool_size"`
		Stealth                          bool   `json:"stealth"`
	} `json:"rod"`

	Chromedp struct {
		LifeTime             int    `json:"life_time"`
		UserDataDir          string `json:"user_data_dir"`
		Headless             bool   `json:"headless"`
		DisableBlinkFeatures string `json:"disable_blink_features"`
		Incognito            bool   `json:"incognito"`
		DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
		NoSandbox            bool   `json:"no_sandbox"`
		UserAgent            string `json:"user_agent"`
		QueryTimeout         int    `json:"query_timeout"`
	} `json:"chromedp"`

	Colly struct {
		AllowedDomains   []string           `json:"allowed_domains"`
		UserAgent        string             `json:"user_agent"`
		IgnoreRobotsTxt  bool               `json:"ignore_robots_txt"`
		Delay            int                `json:"delay"`
		RandomDelay      int                `json:"random_delay"`
		RequestTimeout   int                `json:"request_timeout"`
		EnableCookieJar  bool               `json:"enable_cookie_jar"`
		CookieJarOptions *cookiejar.Options `json:"cookie_jar_options"`
	} `json:"colly"`

	Behavior struct {
		Driver      string `json:"driver"`
		Click       bool   `json:"click"`
		Scroll      bool   `json:"scroll"`
		Duration    int    `json:"duration"`
		ScrollFor   int    `json:"scroll_for"`
		RulesFile   string `json:"rules_file"`
		Parallelism int    `json:"parallelism"`
	} `json:"behavior"`
}
