// Package options 用函数式选项构建 go-rod 的浏览器启动器
package options

import (
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

type Option func(l *launcher.Launcher)

// CreateLauncher userMode 为 true 时复用本机已安装的浏览器和用户配置
func CreateLauncher(userMode bool, opts ...Option) *launcher.Launcher {
	var l *launcher.Launcher
	if userMode {
		l = launcher.NewUserMode()
	} else {
		l = launcher.New()
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func WithBin(bin string) Option {
	return func(l *launcher.Launcher) {
		if bin != "" {
			l.Bin(bin)
		}
	}
}

func WithUserDataDir(dir string) Option {
	return func(l *launcher.Launcher) {
		if dir != "" {
			l.UserDataDir(dir)
		}
	}
}

func WithHeadless(headless bool) Option {
	return func(l *launcher.Launcher) {
		l.Headless(headless)
	}
}

// WithDisableBlinkFeatures 例如 "AutomationControlled"
func WithDisableBlinkFeatures(features string) Option {
	return func(l *launcher.Launcher) {
		if features != "" {
			l.Set(flags.Flag("disable-blink-features"), features)
		}
	}
}

func WithIncognito(incognito bool) Option {
	return func(l *launcher.Launcher) {
		if incognito {
			l.Set(flags.Flag("incognito"))
		}
	}
}

func WithDisableDevShmUsage(disable bool) Option {
	return func(l *launcher.Launcher) {
		if disable {
			l.Set(flags.Flag("disable-dev-shm-usage"))
		}
	}
}

func WithNoSandbox(noSandbox bool) Option {
	return func(l *launcher.Launcher) {
		l.NoSandbox(noSandbox)
	}
}

func WithUserAgent(userAgent string) Option {
	return func(l *launcher.Launcher) {
		if userAgent != "" {
			l.Set(flags.Flag("user-agent"), userAgent)
		}
	}
}

func WithLeakless(leakless bool) Option {
	return func(l *launcher.Launcher) {
		l.Leakless(leakless)
	}
}

func WithDisableBackgroundNetworking(disable bool) Option {
	return func(l *launcher.Launcher) {
		if disable {
			l.Set(flags.Flag("disable-background-networking"))
		}
	}
}

func WithDisableBackgroundTimerThrottling(disable bool) Option {
	return func(l *launcher.Launcher) {
		if disable {
			l.Set(flags.Flag("disable-background-timer-throttling"))
		}
	}
}

// WithRemoteDebuggingPort port 为 0 时由浏览器自行选择
func WithRemoteDebuggingPort(port int) Option {
	return func(l *launcher.Launcher) {
		if port > 0 {
			l.RemoteDebuggingPort(port)
		}
	}
}
