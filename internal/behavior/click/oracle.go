package click

import (
	"context"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
)

// IsVisible 自身及所有祖先元素的 display 都不是 none 时可见。
// 沿父链迭代向上,到达根节点即认为可见。每次都重新计算,不缓存。
func IsVisible(ctx context.Context, el dom.Element) (bool, error) {
	for node := el; node != nil; {
		display, err := node.Display(ctx)
		if err != nil {
			return false, err
		}
		if display == "none" {
			return false, nil
		}
		parent, err := node.Parent(ctx)
		if err != nil {
			return false, err
		}
		node = parent
	}
	return true, nil
}

// IsClickable 未禁用且可见
func IsClickable(ctx context.Context, el dom.Element) (bool, error) {
	disabled, err := el.HasAttribute(ctx, "disabled")
	if err != nil {
		return false, err
	}
	if disabled {
		return false, nil
	}
	return IsVisible(ctx, el)
}
