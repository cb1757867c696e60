package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/therdel/raytracer/asset"
	"github.com/therdel/raytracer/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from file.
func ReadScene(filename string) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		reader = newJSONSceneReader()
	case ".obj":
		reader = newWavefrontSceneReader()
	default:
		return nil, fmt.Errorf("reader: unsupported scene file format %q", filepath.Ext(filename))
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
