package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalLinks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain anchor",
			in:   `<a href="https://x">text</a>`,
			want: `<a href="https://x" target="_blank" rel="noreferrer">text</a>`,
		},
		{
			name: "existing target kept",
			in:   `<a href="https://x" target="_self">text</a>`,
			want: `<a href="https://x" target="_self" rel="noreferrer">text</a>`,
		},
		{
			name: "attribute names are case-insensitive",
			in:   `<A HREF='https://x' REL="nofollow">text</A>`,
			want: `<a HREF='https://x' REL="nofollow" target="_blank">text</A>`,
		},
		{
			name: "anchor without href untouched",
			in:   `<a name="top">top</a>`,
			want: `<a name="top">top</a>`,
		},
		{
			name: "no anchors",
			in:   `<p>Mass at 9am</p>`,
			want: `<p>Mass at 9am</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExternalLinks(tt.in))
		})
	}
}

func TestExternalLinks_Idempotent(t *testing.T) {
	once := ExternalLinks(`<p><a href="https://x">text</a> and <a href="/local">here</a></p>`)
	twice := ExternalLinks(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, 2, strings.Count(twice, `target="_blank"`))
	assert.Equal(t, 2, strings.Count(twice, `rel="noreferrer"`))
}

func TestStripObjects(t *testing.T) {
	in := `<p>Before</p><OBJECT data="x.swf"><param name="a"/>
</object><p>After</p><object></object>`
	assert.Equal(t, `<p>Before</p><p>After</p>`, StripObjects(in))
}

func TestRewriteFileBlocks(t *testing.T) {
	const href = "https://example.files.wordpress.com/2024/03/bulletin.pdf"
	html := `<div class="wp-block-file"><a id="x" href="` + href + `">March Bulletin</a>` +
		`<a href="` + href + `" class="wp-block-file__button" download>Download</a></div>`

	t.Run("size from matching attachment", func(t *testing.T) {
		got := RewriteFileBlocks(html, []Attachment{
			{URL: "https://other/file.doc", Filesize: 10},
			{URL: href, Filesize: 2097152},
		})
		assert.Equal(t, `<p><a href="`+href+`" target="_blank" rel="noreferrer">March Bulletin (PDF, 2.0 MB)</a></p>`, got)
	})

	t.Run("explicit extension wins", func(t *testing.T) {
		got := RewriteFileBlocks(html, []Attachment{{URL: href, Extension: "docx", Filesize: 3072}})
		assert.Contains(t, got, "March Bulletin (DOCX, 3 KB)")
	})

	t.Run("no matching attachment", func(t *testing.T) {
		got := RewriteFileBlocks(html, nil)
		assert.Contains(t, got, "March Bulletin (PDF)</a></p>")
		assert.NotContains(t, got, "wp-block-file")
	})

	t.Run("unknown size", func(t *testing.T) {
		got := RewriteFileBlocks(html, []Attachment{{URL: href, Filesize: math.NaN()}})
		assert.Contains(t, got, "March Bulletin (PDF)</a></p>")
	})

	t.Run("other divs untouched", func(t *testing.T) {
		in := `<div class="wp-block-image"><a href="https://x">img</a></div>`
		assert.Equal(t, in, RewriteFileBlocks(in, nil))
	})
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		url      string
		explicit string
		want     string
	}{
		{"https://x.org/a/b.pdf", "", "PDF"},
		{"https://x.org/a/b.pdf?ver=2", "", "PDF"},
		{"https://x.org/a/archive.tar.gz", "", "GZ"},
		{"https://x.org/download", "", "FILE"},
		{"https://x.org/a/b.pdf", "odt", "ODT"},
		{"/uploads/flyer.JPG", "", "JPG"},
		{"noextension", "", "FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, FileExtension(tt.url, tt.explicit))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes float64
		want  string
	}{
		{2097152, "2.0 MB"},
		{1048576, "1.0 MB"},
		{1310720, "1.3 MB"}, // 1.25 rounds half up
		{1048575, "1024 KB"},
		{1536, "2 KB"},
		{100, "0 KB"},
		{0, ""},
		{-5, ""},
		{math.Inf(1), ""},
		{math.NaN(), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes), "bytes=%v", tt.bytes)
	}
}

func TestNew(t *testing.T) {
	post := Post{
		Content: `<p><a href="https://x">x</a></p><object>flash</object>`,
		Excerpt: `<p>Short <a href="https://x">x</a></p>`,
	}

	p, err := New(Excerpt)
	require.NoError(t, err)
	assert.Equal(t, post.Excerpt, p.Parse(post))

	p, err = New(Content)
	require.NoError(t, err)
	assert.Equal(t, `<p><a href="https://x" target="_blank" rel="noreferrer">x</a></p>`, p.Parse(post))

	p, err = New("")
	require.NoError(t, err)
	assert.IsType(t, AttachmentParser{}, p)

	_, err = New("markdown")
	assert.Error(t, err)
}

func TestBodyField(t *testing.T) {
	assert.Equal(t, "excerpt", BodyField(Excerpt))
	assert.Equal(t, "content", BodyField(Content))
	assert.Equal(t, "content", BodyField(Attachments))
}

func TestPlainTextAndTeaser(t *testing.T) {
	html := "<p>Join us  for the\n<strong>parish picnic</strong>.</p><script>alert(1)</script>"
	assert.Equal(t, "Join us for the parish picnic.", PlainText(html))
	assert.Equal(t, "Join us...", Teaser(html, 8))
	assert.Equal(t, "Join us for the parish picnic.", Teaser(html, 100))
}

func TestParagraphs(t *testing.T) {
	assert.Equal(t, []string{"One", "Two"}, Paragraphs("<p>One</p><p> </p><p>Two</p>"))
	assert.Equal(t, []string{"line one", "line two"}, Paragraphs("line one\n\nline two"))
	assert.Nil(t, Paragraphs(""))
}
