package resolver

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/toyz/apigen/internal/models"
)

const (
	// InterfacesDir is the output subdirectory holding copied declarations
	InterfacesDir = "interfaces"
	// InterfacesPackage is the package clause written into every copy
	InterfacesPackage = "interfaces"
)

// CopyAll produces one interfaces/ artifact per resolved file, rewriting
// only the package clause. Each file is copied once; files sharing a base
// name are prefixed with their parent directory name.
func (r *Resolver) CopyAll(files []string) ([]*models.GeneratedArtifact, error) {
	used := make(map[string]string)
	artifacts := make([]*models.GeneratedArtifact, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file)
		if owner, taken := used[name]; taken && owner != file {
			name = filepath.Base(filepath.Dir(file)) + "_" + name
		}
		if owner, taken := used[name]; taken {
			if owner == file {
				continue
			}
			return nil, fmt.Errorf("cannot copy %s: %s already copied from %s", file, name, owner)
		}
		used[name] = file

		artifact, err := r.copyAs(file, name)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

func (r *Resolver) copyAs(sourcePath, name string) (*models.GeneratedArtifact, error) {
	sf, err := r.source(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}

	src := string(sf.src)
	start := int(sf.file.Name.Pos()) - 1
	end := int(sf.file.Name.End()) - 1
	if start < 0 || end > len(src) || src[start:end] != sf.file.Name.Name {
		return nil, fmt.Errorf("failed to locate package clause in %s", sourcePath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by apigen from %s. DO NOT EDIT.\n\n", filepath.Base(sourcePath))
	b.WriteString(src[:start])
	b.WriteString(InterfacesPackage)
	b.WriteString(src[end:])

	return &models.GeneratedArtifact{
		Kind:    models.ArtifactInterface,
		Path:    path.Join(InterfacesDir, name),
		Content: b.String(),
	}, nil
}
