package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDetailLink(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		expected bool
	}{
		{name: "work.ua job page", href: "https://www.work.ua/jobs/5412345/", expected: true},
		{name: "robota.ua vacancy", href: "https://robota.ua/company1234567/vacancy9876543", expected: true},
		{name: "legacy job segment", href: "https://example.com/job/golang", expected: true},
		{name: "company with numeric id", href: "https://robota.ua/company12345", expected: true},
		{name: "company without id", href: "https://robota.ua/company/about", expected: false},
		{name: "search listing", href: "https://www.work.ua/jobs-kyiv-golang/", expected: false},
		{name: "jobs root without id", href: "https://www.work.ua/jobs/", expected: false},
		{name: "numeric id alone", href: "https://www.work.ua/news/123456", expected: false},
		{name: "relative link", href: "/jobs/5412345/", expected: false},
		{name: "javascript link", href: "javascript:void(0)", expected: false},
		{name: "empty", href: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDetailLink(tt.href))
		})
	}
}

func TestExtractDetailLinks_PreservesOrder(t *testing.T) {
	hrefs := []string{
		"https://www.work.ua/",
		"https://www.work.ua/jobs/300001/",
		"https://www.work.ua/jobs-kyiv/",
		"https://robota.ua/company55555/vacancy1",
		"https://www.work.ua/jobs/100001/",
	}

	links := ExtractDetailLinks(hrefs, 10)

	assert.Equal(t, []string{
		"https://www.work.ua/jobs/300001/",
		"https://robota.ua/company55555/vacancy1",
		"https://www.work.ua/jobs/100001/",
	}, links)
}

func TestExtractDetailLinks_Cap(t *testing.T) {
	var hrefs []string
	for i := 0; i < 50; i++ {
		hrefs = append(hrefs, fmt.Sprintf("https://www.work.ua/jobs/%d/", 100000+i))
	}

	links := ExtractDetailLinks(hrefs, 0)

	assert.Len(t, links, DefaultMaxLinks)
	assert.Equal(t, hrefs[:DefaultMaxLinks], links)
}

func TestExtractDetailLinks_CapNeverExceedsDefault(t *testing.T) {
	var hrefs []string
	for i := 0; i < 30; i++ {
		hrefs = append(hrefs, fmt.Sprintf("https://www.work.ua/jobs/%d/", 200000+i))
	}

	tests := []struct {
		name string
		max  int
		want int
	}{
		{name: "below default", max: 3, want: 3},
		{name: "default", max: DefaultMaxLinks, want: DefaultMaxLinks},
		{name: "above default", max: 25, want: DefaultMaxLinks},
		{name: "negative", max: -1, want: DefaultMaxLinks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ExtractDetailLinks(hrefs, tt.max), tt.want)
		})
	}
}

func TestExtractDetailLinks_DropsRepeats(t *testing.T) {
	hrefs := []string{
		"https://www.work.ua/jobs/1000001/",
		"https://www.work.ua/jobs/1000001/",
		"https://www.work.ua/jobs/1000002/",
	}

	links := ExtractDetailLinks(hrefs, 10)

	assert.Equal(t, []string{"https://www.work.ua/jobs/1000001/", "https://www.work.ua/jobs/1000002/"}, links)
}

func TestExtractDetailLinks_Empty(t *testing.T) {
	assert.Empty(t, ExtractDetailLinks(nil, 10))
	assert.Empty(t, ExtractDetailLinks([]string{"https://www.work.ua/about/"}, 10))
}
