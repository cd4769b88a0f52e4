// Package domtest 提供内存中的 dom.Page 实现,供测试使用。
package domtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
)

// ErrDriver 模拟驱动层故障
var ErrDriver = errors.New("domtest: driver failure")

// Page 可编程的假页面,所有方法并发安全
type Page struct {
	mu sync.Mutex

	host    string
	nextID  dom.NodeID
	matches map[string][]*Element
	broken  map[string]bool
	clicks  []string

	viewport    dom.Viewport
	boxes       []dom.ScrollBox
	snapshot    []dom.ScrollBox
	measured    func()
	scrolled    []dom.ScrollBox
	loadErr     error
	scrollErr   error
	viewScrolls int
	boxScrolls  int
	scrollSteps [][]dom.ScrollStep
	viewportDy  []float64
}

var _ dom.Page = (*Page)(nil)

// NewPage 创建主机名为 host 的假页面
func NewPage(host string) *Page {
	return &Page{
		host:    host,
		matches: make(map[string][]*Element),
		broken:  make(map[string]bool),
	}
}

// Element 创建一个可见、未禁用、无父节点的元素
func (p *Page) Element(name string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	return &Element{page: p, id: p.nextID, name: name, display: "block", attrs: map[string]bool{}}
}

// Match 设置 selector 的查询结果
func (p *Page) Match(selector string, els ...*Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matches[selector] = els
}

// BreakSelector 让 selector 的查询返回错误
func (p *Page) BreakSelector(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broken[selector] = true
}

// Detach 将元素从所有查询结果中移除,之后的点击为空操作
func (p *Page) Detach(el *Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el.detached = true
	for sel, els := range p.matches {
		kept := els[:0:0]
		for _, e := range els {
			if e != el {
				kept = append(kept, e)
			}
		}
		p.matches[sel] = kept
	}
}

// Clicks 返回已派发点击的元素名,按派发顺序
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// SetScroll 设置视口高度与可滚动元素
func (p *Page) SetScroll(innerHeight float64, boxes ...dom.ScrollBox) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewport = dom.Viewport{InnerHeight: innerHeight}
	p.boxes = boxes
}

// OnMeasured 在每次 ScrollBoxes 返回前调用 fn,用来模拟测量与滚动之间的 DOM 变化
func (p *Page) OnMeasured(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measured = fn
}

// ScrolledBoxes 返回 ScrollBoxesBy 实际滚动过的元素,取自当时的快照
func (p *Page) ScrolledBoxes() []dom.ScrollBox {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dom.ScrollBox(nil), p.scrolled...)
}

// FailLoad 让 WaitLoad 返回 err
func (p *Page) FailLoad(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadErr = err
}

// FailScroll 让 Viewport 返回 err,传入 nil 恢复
func (p *Page) FailScroll(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollErr = err
}

// ScrollCalls 返回视口滚动次数与元素滚动次数
func (p *Page) ScrollCalls() (viewport, boxes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewScrolls, p.boxScrolls
}

// ScrollSteps 返回每次 ScrollBoxesBy 收到的步骤
func (p *Page) ScrollSteps() [][]dom.ScrollStep {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]dom.ScrollStep(nil), p.scrollSteps...)
}

// ViewportDeltas 返回每次视口滚动的距离
func (p *Page) ViewportDeltas() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.viewportDy...)
}

func (p *Page) Hostname(ctx context.Context) (string, error) {
	return p.host, nil
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken[selector] {
		return nil, fmt.Errorf("domtest: invalid selector %q", selector)
	}
	els := p.matches[selector]
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}

func (p *Page) WaitLoad(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadErr
}

func (p *Page) Viewport(ctx context.Context) (dom.Viewport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scrollErr != nil {
		return dom.Viewport{}, p.scrollErr
	}
	return p.viewport, nil
}

func (p *Page) ScrollViewport(ctx context.Context, dy float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewScrolls++
	p.viewportDy = append(p.viewportDy, dy)
	return nil
}

func (p *Page) ScrollBoxes(ctx context.Context) ([]dom.ScrollBox, error) {
	p.mu.Lock()
	p.snapshot = append([]dom.ScrollBox(nil), p.boxes...)
	out := append([]dom.ScrollBox(nil), p.snapshot...)
	measured := p.measured
	p.mu.Unlock()

	if measured != nil {
		measured()
	}
	return out, nil
}

// ScrollBoxesBy 按上一次 ScrollBoxes 的快照查找元素,和真实驱动一致
func (p *Page) ScrollBoxesBy(ctx context.Context, steps []dom.ScrollStep) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.boxScrolls += len(steps)
	p.scrollSteps = append(p.scrollSteps, append([]dom.ScrollStep(nil), steps...))
	for _, step := range steps {
		for _, box := range p.snapshot {
			if box.Index == step.Index {
				p.scrolled = append(p.scrolled, box)
				break
			}
		}
	}
	return nil
}

// Element 假元素
type Element struct {
	page     *Page
	id       dom.NodeID
	name     string
	display  string
	attrs    map[string]bool
	parent   *Element
	detached bool
	failing  bool
}

var _ dom.Element = (*Element)(nil)

// Hide 设置 display: none
func (e *Element) Hide() *Element {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.display = "none"
	return e
}

// Show 恢复为 display: block
func (e *Element) Show() *Element {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.display = "block"
	return e
}

// Disable 添加 disabled 属性
func (e *Element) Disable() *Element {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.attrs["disabled"] = true
	return e
}

// Under 设置父元素
func (e *Element) Under(parent *Element) *Element {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.parent = parent
	return e
}

// Fail 让该元素的所有调用返回 ErrDriver
func (e *Element) Fail() *Element {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.failing = true
	return e
}

// Name 元素名
func (e *Element) Name() string {
	return e.name
}

func (e *Element) ID() dom.NodeID {
	return e.id
}

func (e *Element) HasAttribute(ctx context.Context, name string) (bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.failing {
		return false, ErrDriver
	}
	return e.attrs[name], nil
}

func (e *Element) Display(ctx context.Context) (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.failing {
		return "", ErrDriver
	}
	return e.display, nil
}

func (e *Element) Parent(ctx context.Context) (dom.Element, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.failing {
		return nil, ErrDriver
	}
	if e.parent == nil {
		return nil, nil
	}
	return e.parent, nil
}

func (e *Element) Click(ctx context.Context) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.failing {
		return ErrDriver
	}
	if e.detached {
		return nil
	}
	e.page.clicks = append(e.page.clicks, e.name)
	return nil
}
