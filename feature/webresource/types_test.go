package webresource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForExtension(t *testing.T) {
	tests := []struct {
		ext      string
		expected ResourceType
		ok       bool
	}{
		{".html", TypeHTML, true},
		{".css", TypeCSS, true},
		{".js", TypeJS, true},
		{".xml", TypeXML, true},
		{".png", TypePNG, true},
		{".jpg", TypeJPG, true},
		{".gif", TypeGIF, true},
		{".xap", TypeXAP, true},
		{".xsl", TypeXSL, true},
		{".ico", TypeICO, true},
		{"JS", TypeJS, true},
		{".PNG", TypePNG, true},
		{".jpeg", 0, false},
		{".svg", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, ok := TypeForExtension(tt.ext)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTypeForPath(t *testing.T) {
	got, ok := TypeForPath("new_/scripts/form.main.js")
	assert.True(t, ok)
	assert.Equal(t, 3, int(got))

	_, ok = TypeForPath("images.d/README")
	assert.False(t, ok)
}

func TestResourceType_ContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", TypeJPG.ContentType())
	assert.Equal(t, "text/css", TypeCSS.ContentType())
	assert.Equal(t, "application/octet-stream", ResourceType(0).ContentType())
	assert.Equal(t, "unknown", ResourceType(42).String())
	assert.Equal(t, "ico", TypeICO.String())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{UnknownExtension: "Fail"}.Validate())
	assert.Equal(t, PolicyFail, Config{UnknownExtension: " FAIL "}.Policy())
	assert.Error(t, Config{UnknownExtension: "default"}.Validate())
}
