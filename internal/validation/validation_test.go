package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsXSS(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Wedding highlights, 3 minutes", false},
		{"cut the intro <5s please", false},
		{"<script>alert('xss')</script>", true},
		{"javascript:alert(1)", true},
		{`<a href="#" onclick="steal()">x</a>`, true},
		{"<IMG SRC=x>", true},
		{"document.cookie", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsXSS(tt.input))
		})
	}
}

func TestContainsUnicodeAttack(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"latin", "Color grade", false},
		{"cyrillic", "Свадебный ролик", false},
		{"separate scripts", "Свадьба Mumbai", false},
		{"rtl override", "clip\u202emp4.exe", true},
		{"zero width", "pay\u200bpal", true},
		{"homograph", "p\u0430ypal", true},
		{"bom", "\ufefftitle", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsUnicodeAttack(tt.input))
		})
	}
}

func TestSanitizeUnicode(t *testing.T) {
	assert.Equal(t, "clipmp4", SanitizeUnicode("clip\u202e\u200bmp4"))
	assert.Equal(t, "line\nbreak", SanitizeUnicode("line\nbreak"))
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"editor@example.com", true},
		{"first.last+tag@studio.co.in", true},
		{"userexample.com", false},
		{"user@", false},
		{".user@example.com", false},
		{"us..er@example.com", false},
		{"user@-example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidEmail(tt.email))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	err := ValidateEmail("nope", "email")
	require.Error(t, err)
	assert.Equal(t, "email is not a valid email address", err.Error())
	assert.NoError(t, ValidateEmail("a@b.io", "email"))
}

func TestIsValidFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"raw_footage_01.mp4", true},
		{"Свадьба день 1.mov", true},
		{"../etc/passwd", false},
		{"clip/../../x.mp4", false},
		{".hidden.mp4", false},
		{"trailing.", false},
		{"payload.exe", false},
		{"CON.mp4", false},
		{"what?.mp4", false},
		{strings.Repeat("a", 256), false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidFilename(tt.filename))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"report.xlsx", "report.xlsx"},
		{"a/b\\c.mp4", "a_b_c.mp4"},
		{"../../secret", "____secret"},
		{"  .hidden  ", "hidden"},
		{"", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestVideoContentType(t *testing.T) {
	assert.True(t, IsVideoContentType("video/mp4"))
	assert.True(t, IsVideoContentType("Video/QuickTime; codecs=avc1"))
	assert.False(t, IsVideoContentType("video/x-flash-nonsense"))
	assert.False(t, IsVideoContentType("application/pdf"))

	err := ValidateVideoContentType("image/png", "content_type")
	assert.EqualError(t, err, "content_type is not a supported video type")
}

func TestGetContentTypeFromExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"clip.MP4", "video/mp4"},
		{"cut.mov", "video/quicktime"},
		{"take.mkv", "video/x-matroska"},
		{"noext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetContentTypeFromExtension(tt.filename))
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Run("trims and strips invisible characters", func(t *testing.T) {
		got, err := SanitizeText("  Wedding\u200b teaser ", "title", true, MaxTitleLength)
		require.NoError(t, err)
		assert.Equal(t, "Wedding teaser", got)
	})

	t.Run("required", func(t *testing.T) {
		_, err := Title("   ", "title")
		assert.EqualError(t, err, "title is required")
	})

	t.Run("optional empty", func(t *testing.T) {
		got, err := Note("", "description")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("length counted in runes", func(t *testing.T) {
		_, err := Title(strings.Repeat("ж", MaxTitleLength), "title")
		assert.NoError(t, err)
		_, err = Title(strings.Repeat("ж", MaxTitleLength+1), "title")
		assert.EqualError(t, err, "title must be at most 200 characters")
	})

	t.Run("xss rejected", func(t *testing.T) {
		_, err := RequiredNote("<script>alert(1)</script>", "feedback")
		assert.Error(t, err)
	})
}
