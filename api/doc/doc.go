// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package doc serves the OpenAPI description of the pool API.
package doc

import (
	"embed"

	"gopkg.in/yaml.v3"
)

const specFile = "cactus.yaml"

// FS holds cactus.yaml, served under /doc.
//
//go:embed cactus.yaml
var FS embed.FS

type apiInfo struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

var info apiInfo

// Version is the API version, sent with every response as x-cactus-ver.
func Version() string {
	return info.Version
}

// Title names the API.
func Title() string {
	return info.Title
}

func init() {
	content, err := FS.ReadFile(specFile)
	if err != nil {
		panic(err)
	}
	var doc struct {
		Info *apiInfo `yaml:"info"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		panic(err)
	}
	if doc.Info == nil || doc.Info.Version == "" {
		panic(specFile + ": info.version missing")
	}
	info = *doc.Info
}
