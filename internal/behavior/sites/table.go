package sites

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// 内置规则随二进制一起编译,运行时不可修改
//
//go:embed click.yaml
var builtinRules []byte

type ruleFile []struct {
	Hostname  string `yaml:"hostname"`
	Selectors []struct {
		Selector   string `yaml:"selector"`
		Multi      bool   `yaml:"multi"`
		ThrottleMs int    `yaml:"throttle_ms"`
	} `yaml:"selectors"`
}

var builtin = sync.OnceValue(func() Table {
	table, err := Parse(builtinRules)
	if err != nil {
		panic(fmt.Sprintf("sites: 内置规则表无效: %v", err))
	}
	return table
})

// Builtin 返回内置站点规则表
func Builtin() Table {
	return builtin()
}

// Parse 解析 YAML 格式的规则表。主机名模式统一按大小写不敏感编译。
func Parse(data []byte) (Table, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析规则表失败: %w", err)
	}
	table := make(Table, 0, len(file))
	for i, entry := range file {
		if entry.Hostname == "" {
			return nil, fmt.Errorf("第 %d 条规则缺少 hostname", i+1)
		}
		pattern, err := regexp.Compile("(?i)" + entry.Hostname)
		if err != nil {
			return nil, fmt.Errorf("第 %d 条规则 hostname 无效: %w", i+1, err)
		}
		site := SiteRule{Hostname: pattern, Selectors: make([]SelectorRule, 0, len(entry.Selectors))}
		for _, s := range entry.Selectors {
			if s.Selector == "" {
				return nil, fmt.Errorf("规则 %s 含有空选择器", entry.Hostname)
			}
			if s.ThrottleMs < 0 {
				return nil, fmt.Errorf("规则 %s 的 throttle_ms 不能为负: %d", entry.Hostname, s.ThrottleMs)
			}
			rule := SelectorRule{
				Selector: s.Selector,
				Throttle: time.Duration(s.ThrottleMs) * time.Millisecond,
			}
			if s.Multi {
				rule.Flags |= Multi
			}
			site.Selectors = append(site.Selectors, rule)
		}
		table = append(table, site)
	}
	return table, nil
}

// LoadFile 从文件读取额外的规则
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取规则文件失败: %w", err)
	}
	return Parse(data)
}
