package client

import (
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

type userDTO struct {
	Login         string          `json:"login"`
	MaxGears      int             `json:"max_gears"`
	ConsumedGears int             `json:"consumed_gears"`
	Links         openshift.Links `json:"links"`
}

type domainDTO struct {
	ID     string          `json:"id"`
	Suffix string          `json:"suffix"`
	Links  openshift.Links `json:"links"`
}

type applicationDTO struct {
	Name           string                `json:"name"`
	UUID           string                `json:"uuid"`
	Framework      string                `json:"framework"`
	CreationTime   string                `json:"creation_time"`
	ApplicationURL string                `json:"app_url"`
	GitURL         string                `json:"git_url"`
	DomainID       string                `json:"domain_id"`
	Aliases        []string              `json:"aliases"`
	Scalable       bool                  `json:"scalable"`
	GearProfile    openshift.GearProfile `json:"gear_profile"`
	Links          openshift.Links       `json:"links"`
}

type cartridgeDTO struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	URL   string          `json:"url"`
	Links openshift.Links `json:"links"`
}

type sshKeyDTO struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Content string          `json:"content"`
	Links   openshift.Links `json:"links"`
}

// cartridgeTypeStandalone marks the framework cartridge an application runs on.
const cartridgeTypeStandalone = "standalone"
