package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdpdom "github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
)

type chromedpTab struct {
	ctx          context.Context
	cancel       context.CancelFunc
	url          string
	queryTimeout time.Duration
}

var _ Tab = (*chromedpTab)(nil)

// run 在标签页上执行动作,ctx 结束时只中断动作本身,不会关闭标签页
func (t *chromedpTab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (t *chromedpTab) URL() string {
	return t.url
}

func (t *chromedpTab) Close() error {
	t.cancel()
	return nil
}

func (t *chromedpTab) Hostname(ctx context.Context) (string, error) {
	var host string
	if err := t.run(ctx, chromedp.Evaluate(invoke(hostnameJS), &host)); err != nil {
		return "", fmt.Errorf("读取主机名失败: %w", err)
	}
	return host, nil
}

func (t *chromedpTab) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	var nodes []*cdp.Node
	err := t.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		queryCtx, cancel := context.WithTimeout(ctx, t.queryTimeout)
		defer cancel()
		return chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)).Do(queryCtx)
	}))
	if err != nil {
		return nil, fmt.Errorf("查询 %q 失败: %w", selector, err)
	}
	out := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &chromedpElement{tab: t, node: n})
	}
	return out, nil
}

// WaitLoad 等待 load 事件之后的 readyState,超时由 ctx 决定。
// 后台标签页不触发 requestAnimationFrame,所以按固定间隔轮询。
func (t *chromedpTab) WaitLoad(ctx context.Context) error {
	return t.run(ctx, chromedp.Poll(loadedJS, nil,
		chromedp.WithPollingInterval(loadPollInterval),
		chromedp.WithPollingTimeout(0),
	))
}

func (t *chromedpTab) Viewport(ctx context.Context) (dom.Viewport, error) {
	var height float64
	if err := t.run(ctx, chromedp.Evaluate(invoke(innerHeightJS), &height)); err != nil {
		return dom.Viewport{}, fmt.Errorf("读取视口高度失败: %w", err)
	}
	return dom.Viewport{InnerHeight: height}, nil
}

func (t *chromedpTab) ScrollViewport(ctx context.Context, dy float64) error {
	return t.run(ctx, chromedp.Evaluate(invoke(scrollViewportJS, dy), nil))
}

func (t *chromedpTab) ScrollBoxes(ctx context.Context) ([]dom.ScrollBox, error) {
	var raw string
	if err := t.run(ctx, chromedp.Evaluate(invoke(scrollBoxesJS), &raw)); err != nil {
		return nil, fmt.Errorf("读取可滚动元素失败: %w", err)
	}
	var boxes []dom.ScrollBox
	if err := json.Unmarshal([]byte(raw), &boxes); err != nil {
		return nil, fmt.Errorf("解析可滚动元素失败: %w", err)
	}
	return boxes, nil
}

func (t *chromedpTab) ScrollBoxesBy(ctx context.Context, steps []dom.ScrollStep) error {
	return t.run(ctx, chromedp.Evaluate(invoke(scrollBoxesByJS, steps), nil))
}

// invoke 把函数脚本和参数拼成可以直接求值的表达式
func invoke(fn string, args ...any) string {
	encoded := make([]byte, 0, 64)
	for i, arg := range args {
		if i > 0 {
			encoded = append(encoded, ',')
		}
		b, err := json.Marshal(arg)
		if err != nil {
			b = []byte("null")
		}
		encoded = append(encoded, b...)
	}
	return fmt.Sprintf("(%s)(%s)", fn, encoded)
}

type chromedpElement struct {
	tab  *chromedpTab
	node *cdp.Node
}

var _ dom.Element = (*chromedpElement)(nil)

func (e *chromedpElement) ID() dom.NodeID {
	if e.node.BackendNodeID != 0 {
		return dom.NodeID(e.node.BackendNodeID)
	}
	return dom.NodeID(e.node.NodeID)
}

// callOnNode 把节点解析为远程对象,以它为 this 调用 fn
func callOnNode(ctx context.Context, nodeID cdp.NodeID, fn string, res any, args ...any) error {
	obj, err := cdpdom.ResolveNode().WithNodeID(nodeID).Do(ctx)
	if err != nil {
		return err
	}
	// 页面跳转后释放会失败,可以忽略
	defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()
	return chromedp.CallFunctionOn(fn, res, onObject(obj.ObjectID), args...).Do(ctx)
}

func onObject(id runtime.RemoteObjectID) chromedp.CallOption {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id)
	}
}

func (e *chromedpElement) call(ctx context.Context, fn string, res any, args ...any) error {
	return e.tab.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return callOnNode(ctx, e.node.NodeID, fn, res, args...)
	}))
}

func (e *chromedpElement) HasAttribute(ctx context.Context, name string) (bool, error) {
	var has bool
	if err := e.call(ctx, hasAttributeJS, &has, name); err != nil {
		return false, err
	}
	return has, nil
}

func (e *chromedpElement) Display(ctx context.Context) (string, error) {
	var display string
	if err := e.call(ctx, displayJS, &display); err != nil {
		return "", err
	}
	return display, nil
}

func (e *chromedpElement) Click(ctx context.Context) error {
	return e.call(ctx, clickJS, nil)
}

func (e *chromedpElement) Parent(ctx context.Context) (dom.Element, error) {
	var parent *cdp.Node
	err := e.tab.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var res *runtime.RemoteObject
		if err := callOnNode(ctx, e.node.NodeID, parentJS, &res); err != nil {
			return err
		}
		// null 表示已到根节点
		if res == nil || res.ObjectID == "" {
			return nil
		}
		defer func() { _ = runtime.ReleaseObject(res.ObjectID).Do(ctx) }()

		nodeID, err := cdpdom.RequestNode(res.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		described, err := cdpdom.DescribeNode().WithNodeID(nodeID).Do(ctx)
		if err != nil {
			return err
		}
		parent = &cdp.Node{NodeID: nodeID, BackendNodeID: described.BackendNodeID, NodeName: described.NodeName}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, nil
	}
	return &chromedpElement{tab: e.tab, node: parent}, nil
}
