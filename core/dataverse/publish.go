package dataverse

import (
	"encoding/xml"
	"fmt"
)

type importExportXML struct {
	XMLName      xml.Name `xml:"importexportxml"`
	WebResources []string `xml:"webresources>webresource"`
}

// BuildPublishXML renders the PublishXml parameter for a set of web resource ids:
//
//	<importexportxml><webresources><webresource>{id}</webresource>...</webresources></importexportxml>
func BuildPublishXML(webResourceIDs []string) (string, error) {
	if len(webResourceIDs) == 0 {
		return "", fmt.Errorf("no web resources to publish")
	}
	out, err := xml.Marshal(importExportXML{WebResources: webResourceIDs})
	if err != nil {
		return "", fmt.Errorf("failed to build publish xml: %w", err)
	}
	return string(out), nil
}
