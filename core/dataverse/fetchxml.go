package dataverse

import (
	"encoding/xml"
	"fmt"
)

type fetch struct {
	XMLName xml.Name    `xml:"fetch"`
	Mapping string      `xml:"mapping,attr"`
	Entity  fetchEntity `xml:"entity"`
}

type fetchEntity struct {
	Name       string           `xml:"name,attr"`
	Attributes []fetchAttribute `xml:"attribute"`
	Links      []fetchLink      `xml:"link-entity"`
}

type fetchAttribute struct {
	Name string `xml:"name,attr"`
}

type fetchLink struct {
	Name     string      `xml:"name,attr"`
	From     string      `xml:"from,attr"`
	To       string      `xml:"to,attr"`
	LinkType string      `xml:"link-type,attr"`
	Alias    string      `xml:"alias,attr"`
	Filter   fetchFilter `xml:"filter"`
}

type fetchFilter struct {
	Type       string           `xml:"type,attr"`
	Conditions []fetchCondition `xml:"condition"`
}

type fetchCondition struct {
	Attribute string `xml:"attribute,attr"`
	Operator  string `xml:"operator,attr"`
	Value     string `xml:"value,attr"`
}

// webResourceColumns are the columns read for every web resource.
var webResourceColumns = []string{"webresourceid", "content", "webresourcetype", "name", "description", "displayname"}

// solutionWebResourcesFetch builds the FetchXML query returning the web resources
// linked to a solution through an inner join on solutioncomponent.
func solutionWebResourcesFetch(solutionID string) (string, error) {
	attrs := make([]fetchAttribute, 0, len(webResourceColumns))
	for _, c := range webResourceColumns {
		attrs = append(attrs, fetchAttribute{Name: c})
	}

	q := fetch{
		Mapping: "logical",
		Entity: fetchEntity{
			Name:       "webresource",
			Attributes: attrs,
			Links: []fetchLink{{
				Name:     "solutioncomponent",
				From:     "objectid",
				To:       "webresourceid",
				LinkType: "inner",
				Alias:    "solutioncomponent",
				Filter: fetchFilter{
					Type: "and",
					Conditions: []fetchCondition{{
						Attribute: "solutionid",
						Operator:  "eq",
						Value:     solutionID,
					}},
				},
			}},
		},
	}

	out, err := xml.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("failed to build fetchxml: %w", err)
	}
	return string(out), nil
}
