// Package static 把一份静态 HTML 适配为 dom.Page。
//
// 计算样式只做近似:内联 style 的 display、hidden 属性以及不渲染的标签。
// 点击只被记录,不会执行任何脚本;滚动为空操作。
package static

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
)

const snippetLimit = 160

// Click 一次被记录的点击
type Click struct {
	Node dom.NodeID
	Tag  string
	HTML string
}

// Page 静态页面
type Page struct {
	doc  *goquery.Document
	host string

	mu     sync.Mutex
	ids    map[*html.Node]dom.NodeID
	nextID dom.NodeID
	clicks []Click
}

var _ dom.Page = (*Page)(nil)

// Parse 解析 HTML,pageURL 用于确定主机名
func Parse(r io.Reader, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("解析页面地址失败: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 失败: %w", err)
	}
	return &Page{doc: doc, host: u.Hostname(), ids: make(map[*html.Node]dom.NodeID)}, nil
}

// Clicks 按顺序返回已记录的点击
func (p *Page) Clicks() []Click {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Click(nil), p.clicks...)
}

func (p *Page) Hostname(ctx context.Context) (string, error) {
	return p.host, nil
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("非法选择器 %q: %w", selector, err)
	}
	found := p.doc.FindMatcher(sel)
	out := make([]dom.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, p.element(s.Get(0)))
	})
	return out, nil
}

// element 同一个节点总是得到同一个 ID
func (p *Page) element(n *html.Node) *element {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.ids[n]
	if !ok {
		p.nextID++
		id = p.nextID
		p.ids[n] = id
	}
	return &element{page: p, node: n, id: id}
}

func (p *Page) WaitLoad(ctx context.Context) error {
	return nil
}

func (p *Page) Viewport(ctx context.Context) (dom.Viewport, error) {
	return dom.Viewport{}, nil
}

func (p *Page) ScrollViewport(ctx context.Context, dy float64) error {
	return nil
}

func (p *Page) ScrollBoxes(ctx context.Context) ([]dom.ScrollBox, error) {
	return nil, nil
}

func (p *Page) ScrollBoxesBy(ctx context.Context, steps []dom.ScrollStep) error {
	return nil
}

type element struct {
	page *Page
	node *html.Node
	id   dom.NodeID
}

func (e *element) ID() dom.NodeID {
	return e.id
}

func (e *element) HasAttribute(ctx context.Context, name string) (bool, error) {
	_, ok := attr(e.node, name)
	return ok, nil
}

func (e *element) Display(ctx context.Context) (string, error) {
	return display(e.node), nil
}

func (e *element) Parent(ctx context.Context) (dom.Element, error) {
	parent := e.node.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return nil, nil
	}
	return e.page.element(parent), nil
}

func (e *element) Click(ctx context.Context) error {
	snippet, err := goquery.OuterHtml(e.page.doc.FindNodes(e.node))
	if err != nil {
		return fmt.Errorf("渲染元素失败: %w", err)
	}
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit] + "..."
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.clicks = append(e.page.clicks, Click{Node: e.id, Tag: e.node.Data, HTML: snippet})
	return nil
}

var nonRendered = map[string]bool{
	"head":     true,
	"title":    true,
	"meta":     true,
	"link":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

var inline = map[string]bool{
	"a":      true,
	"span":   true,
	"button": true,
	"img":    true,
	"b":      true,
	"i":      true,
	"em":     true,
	"strong": true,
	"label":  true,
	"input":  true,
}

// display 近似计算元素的 display,内联样式中最后一条声明生效
func display(n *html.Node) string {
	if nonRendered[n.Data] {
		return "none"
	}
	if _, ok := attr(n, "hidden"); ok {
		return "none"
	}
	if typ, _ := attr(n, "type"); n.Data == "input" && strings.EqualFold(typ, "hidden") {
		return "none"
	}
	if style, ok := attr(n, "style"); ok {
		if value := inlineDisplay(style); value != "" {
			return value
		}
	}
	if inline[n.Data] {
		return "inline"
	}
	return "block"
}

// inlineDisplay 返回内联样式里最后一条非空的 display 声明。
// douceur 只在遇到 ';' 或 '}' 时才写入声明的值,所以先补上花括号;
// 解析出错时沿用出错之前已经解析出的声明。
func inlineDisplay(style string) string {
	decls, _ := parser.ParseDeclarations("{" + style + "}")
	value := ""
	for _, d := range decls {
		if !strings.EqualFold(d.Property, "display") {
			continue
		}
		if v := strings.ToLower(strings.TrimSpace(d.Value)); v != "" {
			value = v
		}
	}
	return value
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
