package webresource

import (
	"path"
	"strings"
)

// ResourceType is the webresourcetype option set value.
type ResourceType int

const (
	TypeHTML ResourceType = 1
	TypeCSS  ResourceType = 2
	TypeJS   ResourceType = 3
	TypeXML  ResourceType = 4
	TypePNG  ResourceType = 5
	TypeJPG  ResourceType = 6
	TypeGIF  ResourceType = 7
	TypeXAP  ResourceType = 8
	TypeXSL  ResourceType = 9
	TypeICO  ResourceType = 10
)

// TypeForExtension maps a file extension, with or without the leading dot, to
// its resource type. Matching ignores case.
func TypeForExtension(ext string) (ResourceType, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "html":
		return TypeHTML, true
	case "css":
		return TypeCSS, true
	case "js":
		return TypeJS, true
	case "xml":
		return TypeXML, true
	case "png":
		return TypePNG, true
	case "jpg":
		return TypeJPG, true
	case "gif":
		return TypeGIF, true
	case "xap":
		return TypeXAP, true
	case "xsl":
		return TypeXSL, true
	case "ico":
		return TypeICO, true
	default:
		return 0, false
	}
}

// TypeForPath maps a slash separated path to its resource type.
func TypeForPath(p string) (ResourceType, bool) {
	return TypeForExtension(path.Ext(p))
}

// ContentType returns the MIME type used when the content is stored as an object.
func (t ResourceType) ContentType() string {
	switch t {
	case TypeHTML:
		return "text/html"
	case TypeCSS:
		return "text/css"
	case TypeJS:
		return "application/javascript"
	case TypeXML:
		return "application/xml"
	case TypePNG:
		return "image/png"
	case TypeJPG:
		return "image/jpeg"
	case TypeGIF:
		return "image/gif"
	case TypeXAP:
		return "application/x-silverlight-app"
	case TypeXSL:
		return "application/xslt+xml"
	case TypeICO:
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}

func (t ResourceType) String() string {
	switch t {
	case TypeHTML:
		return "html"
	case TypeCSS:
		return "css"
	case TypeJS:
		return "js"
	case TypeXML:
		return "xml"
	case TypePNG:
		return "png"
	case TypeJPG:
		return "jpg"
	case TypeGIF:
		return "gif"
	case TypeXAP:
		return "xap"
	case TypeXSL:
		return "xsl"
	case TypeICO:
		return "ico"
	default:
		return "unknown"
	}
}
