package static

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/click"
	"github.com/LouYuanbo1/pagebehavior/internal/behavior/sites"
)

const fixture = `<!doctype html>
<html>
<head><title>thread</title></head>
<body>
  <div id="thread">
    <a class="load-more__button" href="#">Load more comments</a>
    <div style="color: red; display: none">
      <a class="load-more__button" href="#">hidden by parent</a>
    </div>
    <a class="load-more__button" hidden>hidden attribute</a>
    <button class="reply" disabled>Reply</button>
    <button class="reply">Reply</button>
    <span style="display:none; display: inline-block"><a class="load-more__button">last declaration wins</a></span>
  </div>
</body>
</html>`

func parseFixture(t *testing.T) *Page {
	t.Helper()
	page, err := Parse(strings.NewReader(fixture), "https://disqus.com/embed/comments/?base=default")
	require.NoError(t, err)
	return page
}

func TestHostnameIgnoresPath(t *testing.T) {
	page := parseFixture(t)
	host, err := page.Hostname(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "disqus.com", host)
}

func TestQueryAllAndOracle(t *testing.T) {
	ctx := context.Background()
	page := parseFixture(t)

	els, err := page.QueryAll(ctx, "a.load-more__button")
	require.NoError(t, err)
	require.Len(t, els, 4)

	var clickable []bool
	for _, el := range els {
		ok, err := click.IsClickable(ctx, el)
		require.NoError(t, err)
		clickable = append(clickable, ok)
	}
	assert.Equal(t, []bool{true, false, false, true}, clickable)

	buttons, err := page.QueryAll(ctx, "button.reply")
	require.NoError(t, err)
	require.Len(t, buttons, 2)
	disabled, err := click.IsClickable(ctx, buttons[0])
	require.NoError(t, err)
	assert.False(t, disabled)
}

func TestNodeIdentityIsStable(t *testing.T) {
	ctx := context.Background()
	page := parseFixture(t)
	first, err := page.QueryAll(ctx, "button.reply")
	require.NoError(t, err)
	second, err := page.QueryAll(ctx, "#thread button")
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[1].ID(), second[1].ID())
	assert.NotEqual(t, first[0].ID(), first[1].ID())
}

func TestInvalidSelector(t *testing.T) {
	_, err := parseFixture(t).QueryAll(context.Background(), "a[")
	assert.Error(t, err)
}

func TestParentStopsAtDocument(t *testing.T) {
	ctx := context.Background()
	page := parseFixture(t)
	els, err := page.QueryAll(ctx, "html")
	require.NoError(t, err)
	require.Len(t, els, 1)
	parent, err := els[0].Parent(ctx)
	require.NoError(t, err)
	assert.Nil(t, parent)
}

func TestDisplay(t *testing.T) {
	ctx := context.Background()
	page := parseFixture(t)
	tests := []struct {
		selector string
		want     string
	}{
		{"title", "none"},
		{"#thread", "block"},
		{"button.reply", "inline"},
		{"#thread > div", "none"},
		{"#thread > span", "inline-block"},
	}
	for _, tt := range tests {
		els, err := page.QueryAll(ctx, tt.selector)
		require.NoError(t, err)
		require.NotEmpty(t, els, tt.selector)
		got, err := els[0].Display(ctx)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.selector)
	}
}

func TestInlineDisplay(t *testing.T) {
	tests := []struct {
		style string
		want  string
	}{
		{"display: none", "none"},
		{"display:none", "none"},
		{"color: red; display: none", "none"},
		{"display:none; display: inline-block", "inline-block"},
		{"display: flex;", "flex"},
		{"  DISPLAY : None ;  ", "none"},
		{"display: none !important", "none"},
		{"display: none; display:", "none"},
		{"display: grid;; color: red", "grid"},
		{"color: red", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inlineDisplay(tt.style), tt.style)
	}
}

func TestEngineOnStaticPage(t *testing.T) {
	ctx := context.Background()
	page := parseFixture(t)
	host, err := page.Hostname(ctx)
	require.NoError(t, err)

	e := click.New(page, sites.Builtin().Match(host))
	assert.Equal(t, 2, e.Discover(ctx))
	for {
		if _, more := e.Dispatch(ctx); !more {
			break
		}
	}

	clicks := page.Clicks()
	require.Len(t, clicks, 2)
	assert.Equal(t, "a", clicks[0].Tag)
	assert.Contains(t, clicks[0].HTML, "Load more comments")
	assert.Contains(t, clicks[1].HTML, "last declaration wins")
}
