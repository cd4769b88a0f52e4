package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func ParseConfig(byteConfig []byte) (*Config, error) {
	var cfg Config
	err := json.Unmarshal(byteConfig, &cfg)
	if err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	for _, dir := range []*string{&cfg.Chromedp.UserDataDir, &cfg.Rod.UserDataDir} {
		if *dir == "" {
			continue
		}
		absPath, err := filepath.Abs(*dir)
		if err != nil {
			return nil, fmt.Errorf("解析用户数据目录失败: %w", err)
		}
		*dir = absPath
	}
	if cfg.Behavior.Driver == "" {
		cfg.Behavior.Driver = "rod"
	}
	if cfg.Behavior.Parallelism <= 0 {
		cfg.Behavior.Parallelism = 1
	}
	if cfg.Rod.PagePoolSize <= 0 {
		cfg.Rod.PagePoolSize = cfg.Behavior.Parallelism
	}
	return &cfg, nil
}

// LoadFile 读取并解析配置文件
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseConfig(data)
}
