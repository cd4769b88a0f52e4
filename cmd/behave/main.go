// behave 在页面上运行站点相关的点击与滚动行为,
// 让懒加载的评论、回复和无限滚动内容在抓取前全部加载出来。
package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/sites"
	"github.com/LouYuanbo1/pagebehavior/internal/config"
)

// 默认配置,可以用 --config 覆盖
//
//go:embed appconfig/appconfig.json
var appConfig []byte

type app struct {
	configPath string
	rulesPath  string
	verbose    bool

	cfg    *config.Config
	table  sites.Table
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "behave",
		Short: "Run site-specific click and scroll behaviour on web pages",
		Long: `behave drives a browser page so that lazily loaded content appears:
it clicks known "load more" controls for the matched site and keeps
scrolling the page and every scrollable element.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a JSON config file (default: embedded config)")
	root.PersistentFlags().StringVar(&a.rulesPath, "rules", "", "YAML file with extra site rules, appended after the built-in table")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newPlanCmd(a))
	root.AddCommand(newRulesCmd(a))
	root.AddCommand(newEventsCmd(a))
	return root
}

func (a *app) init() error {
	logCfg := zap.NewProductionConfig()
	if a.verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	a.logger = logger

	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.ParseConfig(appConfig)
	}
	if err != nil {
		return err
	}

	a.table = sites.Builtin()
	rulesPath := a.rulesPath
	if rulesPath == "" {
		rulesPath = a.cfg.Behavior.RulesFile
	}
	if rulesPath != "" {
		extra, err := sites.LoadFile(rulesPath)
		if err != nil {
			return err
		}
		a.table = a.table.Extend(extra)
		a.logger.Debug("已加载额外站点规则", zap.String("path", rulesPath), zap.Int("sites", len(extra)))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
