// Package config provides configuration for the development server.
//
// Configuration is merged from three layers: built-in defaults, an optional
// devserver.json file at the project root, and caller overrides (CLI flags
// or the embedding program). The merged result is immutable once handed to
// the server.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-site",
//	  "port": 8080,
//	  "output": "_site",
//	  "pathPrefix": "/",
//	  "enabled": true,
//	  "showAllHosts": false,
//	  "injectedFolderName": ".11ty",
//	  "portRetryLimit": 10,
//	  "watch": true
//	}
package config
