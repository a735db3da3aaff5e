package erp

import (
	"fmt"
	"os"
	"strings"

	"salesrep_sync/platform/apperr"

	"gopkg.in/yaml.v3"
)

type directoryFile struct {
	Employees []struct {
		ID        string `yaml:"id"`
		Email     string `yaml:"email"`
		FirstName string `yaml:"firstName"`
		LastName  string `yaml:"lastName"`
		IsActive  *bool  `yaml:"isActive"`
	} `yaml:"employees"`
}

// ParseStaticDirectory reads a YAML employee list. Employees without an
// isActive field are active.
func ParseStaticDirectory(data []byte) (StaticDirectory, error) {
	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "parse directory file", err)
	}

	dir := make(StaticDirectory, len(file.Employees))
	for i, e := range file.Employees {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, apperr.Configuration(fmt.Sprintf("directory entry %d has no id", i))
		}
		if _, dup := dir[id]; dup {
			return nil, apperr.Configuration(fmt.Sprintf("duplicate directory id %q", id))
		}
		dir[id] = Employee{
			ID:        id,
			Email:     strings.TrimSpace(e.Email),
			FirstName: e.FirstName,
			LastName:  e.LastName,
			IsActive:  e.IsActive == nil || *e.IsActive,
		}
	}
	return dir, nil
}

// LoadStaticDirectory reads the YAML employee list at path.
func LoadStaticDirectory(path string) (StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "read directory file", err)
	}
	return ParseStaticDirectory(data)
}
