package param

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageJobNormalize(t *testing.T) {
	job := &PageJob{Url: "https://disqus.com/", Click: true}
	job.Normalize()
	assert.Equal(t, DefaultDuration, job.Duration)
	assert.Equal(t, DefaultDuration, job.ScrollFor)

	job = &PageJob{Url: "https://disqus.com/", Duration: 10 * time.Second, ScrollFor: 3 * time.Second, Scroll: true}
	job.Normalize()
	assert.Equal(t, 3*time.Second, job.ScrollFor)
}

func TestPageJobIsValid(t *testing.T) {
	base := func() *PageJob {
		return &PageJob{Url: "https://www.reddit.com/r/golang", Duration: time.Minute, ScrollFor: time.Minute, Click: true, Scroll: true}
	}
	tests := []struct {
		name   string
		modify func(*PageJob)
		want   bool
	}{
		{"valid", func(*PageJob) {}, true},
		{"click only", func(j *PageJob) { j.Scroll = false }, true},
		{"no engines", func(j *PageJob) { j.Click, j.Scroll = false, false }, false},
		{"empty url", func(j *PageJob) { j.Url = "" }, false},
		{"not http", func(j *PageJob) { j.Url = "ftp://example.com/" }, false},
		{"no host", func(j *PageJob) { j.Url = "https:///path" }, false},
		{"zero duration", func(j *PageJob) { j.Duration = 0 }, false},
		{"scroll longer than run", func(j *PageJob) { j.ScrollFor = 2 * time.Minute }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := base()
			tt.modify(job)
			assert.Equal(t, tt.want, job.IsValid())
		})
	}

	var nilJob *PageJob
	assert.False(t, nilJob.IsValid())
}
