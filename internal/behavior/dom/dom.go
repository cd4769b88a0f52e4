// Package dom 定义点击与滚动引擎访问页面所需的最小接口。
// rod、chromedp 和静态 HTML 各自提供实现。
package dom

import "context"

// NodeID 页面生命周期内稳定的节点标识
type NodeID int64

// Element 页面上的一个元素节点
type Element interface {
	ID() NodeID
	HasAttribute(ctx context.Context, name string) (bool, error)
	// Display 计算样式中的 display 值
	Display(ctx context.Context) (string, error)
	// Parent 到达根节点时返回 nil, nil
	Parent(ctx context.Context) (Element, error)
	// Click 直接在元素上派发合成的 click 事件
	Click(ctx context.Context) error
}

// Document 点击引擎使用的文档视图
type Document interface {
	Hostname(ctx context.Context) (string, error)
	QueryAll(ctx context.Context, selector string) ([]Element, error)
}

// Viewport 主视口尺寸
type Viewport struct {
	InnerHeight float64
}

// ScrollBox 某个元素的滚动尺寸。Index 只在本次 ScrollBoxes 返回的快照内有效,
// ScrollBoxesBy 按快照找回同一个元素,不受两次调用之间 DOM 变化的影响。
type ScrollBox struct {
	Index        int
	ScrollHeight float64
	ScrollTop    float64
	ClientHeight float64
}

// ScrollStep 对某个元素向下滚动 Delta 像素
type ScrollStep struct {
	Index int
	Delta float64
}

// Scroller 滚动引擎使用的视图
type Scroller interface {
	WaitLoad(ctx context.Context) error
	Viewport(ctx context.Context) (Viewport, error)
	ScrollViewport(ctx context.Context, dy float64) error
	ScrollBoxes(ctx context.Context) ([]ScrollBox, error)
	// ScrollBoxesBy 作用于最近一次 ScrollBoxes 的快照
	ScrollBoxesBy(ctx context.Context, steps []ScrollStep) error
}

// Page 同时支持点击与滚动的页面
type Page interface {
	Document
	Scroller
}
