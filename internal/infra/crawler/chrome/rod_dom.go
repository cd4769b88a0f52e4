package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
)

type rodTab struct {
	page    *rod.Page
	url     string
	release func(*rod.Page)
	once    sync.Once
}

var _ Tab = (*rodTab)(nil)

func (t *rodTab) URL() string {
	return t.url
}

func (t *rodTab) Close() error {
	t.once.Do(func() { t.release(t.page) })
	return nil
}

func (t *rodTab) Hostname(ctx context.Context) (string, error) {
	res, err := t.page.Context(ctx).Eval(hostnameJS)
	if err != nil {
		return "", fmt.Errorf("读取主机名失败: %w", err)
	}
	return res.Value.Str(), nil
}

func (t *rodTab) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	elements, err := t.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("查询 %q 失败: %w", selector, err)
	}
	out := make([]dom.Element, 0, len(elements))
	for _, el := range elements {
		wrapped, err := newRodElement(ctx, el)
		if err != nil {
			// 查询和描述之间节点可能已被移除
			continue
		}
		out = append(out, wrapped)
	}
	return out, nil
}

func (t *rodTab) WaitLoad(ctx context.Context) error {
	return t.page.Context(ctx).WaitLoad()
}

func (t *rodTab) Viewport(ctx context.Context) (dom.Viewport, error) {
	res, err := t.page.Context(ctx).Eval(innerHeightJS)
	if err != nil {
		return dom.Viewport{}, fmt.Errorf("读取视口高度失败: %w", err)
	}
	return dom.Viewport{InnerHeight: res.Value.Num()}, nil
}

func (t *rodTab) ScrollViewport(ctx context.Context, dy float64) error {
	_, err := t.page.Context(ctx).Eval(scrollViewportJS, dy)
	return err
}

func (t *rodTab) ScrollBoxes(ctx context.Context) ([]dom.ScrollBox, error) {
	res, err := t.page.Context(ctx).Eval(scrollBoxesJS)
	if err != nil {
		return nil, fmt.Errorf("读取可滚动元素失败: %w", err)
	}
	var boxes []dom.ScrollBox
	if err := json.Unmarshal([]byte(res.Value.Str()), &boxes); err != nil {
		return nil, fmt.Errorf("解析可滚动元素失败: %w", err)
	}
	return boxes, nil
}

func (t *rodTab) ScrollBoxesBy(ctx context.Context, steps []dom.ScrollStep) error {
	_, err := t.page.Context(ctx).Eval(scrollBoxesByJS, steps)
	return err
}

type rodElement struct {
	el *rod.Element
	id dom.NodeID
}

var _ dom.Element = (*rodElement)(nil)

func newRodElement(ctx context.Context, el *rod.Element) (*rodElement, error) {
	node, err := el.Context(ctx).Describe(0, false)
	if err != nil {
		return nil, err
	}
	return &rodElement{el: el, id: dom.NodeID(node.BackendNodeID)}, nil
}

func (e *rodElement) ID() dom.NodeID {
	return e.id
}

func (e *rodElement) HasAttribute(ctx context.Context, name string) (bool, error) {
	res, err := e.el.Context(ctx).Eval(hasAttributeJS, name)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (e *rodElement) Display(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(displayJS)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) Parent(ctx context.Context) (dom.Element, error) {
	parent, err := e.el.Context(ctx).Parent()
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	wrapped, err := newRodElement(ctx, parent)
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

func (e *rodElement) Click(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(clickJS)
	return err
}
