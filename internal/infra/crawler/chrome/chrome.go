package chrome

import (
	"context"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/dom"
)

// ChromeCrawler 浏览器驱动,为每个 URL 打开一个已导航的标签页
type ChromeCrawler interface {
	OpenPage(ctx context.Context, url string) (Tab, error)
	Close()
}

// Tab 一个已打开的页面。Close 之后不能再使用。
type Tab interface {
	dom.Page
	URL() string
	Close() error
}

// 页面内执行的脚本,两个驱动共用
const (
	hostnameJS = `() => location.hostname`

	innerHeightJS = `() => window.innerHeight`

	// load 事件触发后 readyState 才变为 complete
	loadedJS = `document.readyState === 'complete'`

	scrollViewportJS = `(dy) => window.scrollBy(0, dy)`

	// 只返回内容高于可视区域的元素,并把这些元素按返回顺序保存为快照。
	// Index 指向快照,之后的 DOM 变化不会让下标错位。
	scrollBoxesJS = `() => {
	const boxes = [];
	const out = [];
	for (const e of document.querySelectorAll('html body *')) {
		if (e.scrollHeight > e.clientHeight) {
			out.push({Index: boxes.length, ScrollHeight: e.scrollHeight, ScrollTop: e.scrollTop, ClientHeight: e.clientHeight});
			boxes.push(e);
		}
	}
	window[Symbol.for('pagebehavior.scrollBoxes')] = boxes;
	return JSON.stringify(out);
}`

	// 按上一次 scrollBoxesJS 的快照滚动,已经移出文档的元素跳过
	scrollBoxesByJS = `(steps) => {
	const boxes = window[Symbol.for('pagebehavior.scrollBoxes')] || [];
	for (const s of steps) {
		const e = boxes[s.Index];
		if (e && e.isConnected) {
			e.scrollBy(0, s.Delta);
		}
	}
}`

	displayJS = `function () { return getComputedStyle(this).display; }`

	hasAttributeJS = `function (name) { return this.hasAttribute(name); }`

	clickJS = `function () {
	this.dispatchEvent(new MouseEvent('click', {view: window, bubbles: true, cancelable: true}));
}`

	parentJS = `function () { return this.parentElement; }`
)
