package entities

import "strings"

// Directory identifies one of the browsable listing categories. It decides
// which optional Listing fields are meaningful and which filters apply.
type Directory string

const (
	DirectoryChildcare     Directory = "childcare"
	DirectoryPediatricians Directory = "pediatricians"
	DirectoryDentists      Directory = "dentists"
	DirectoryTherapists    Directory = "therapists"
)

// ParseDirectory resolves the active directory from a URL fragment. Anything
// that is not a known directory prefix falls back to childcare, which keeps
// filter-state fragments ("search=...") on the default view.
func ParseDirectory(fragment string) Directory {
	fragment = strings.TrimPrefix(fragment, "#")
	for _, d := range []Directory{DirectoryPediatricians, DirectoryDentists, DirectoryTherapists} {
		if strings.HasPrefix(fragment, string(d)) {
			return d
		}
	}
	return DirectoryChildcare
}

// IsChildcare reports whether childcare-only filters apply. Every other
// directory, including ones this build does not know about, gets the
// provider-mode treatment.
func (d Directory) IsChildcare() bool {
	return d == DirectoryChildcare
}

// CatalogFile returns the data file name (without extension) for this
// directory. The childcare catalog predates the multi-directory layout and
// keeps its historical name.
func (d Directory) CatalogFile() string {
	if d == DirectoryChildcare {
		return "centers"
	}
	return string(d)
}

// Valid reports whether d is one of the known directories.
func (d Directory) Valid() bool {
	switch d {
	case DirectoryChildcare, DirectoryPediatricians, DirectoryDentists, DirectoryTherapists:
		return true
	}
	return false
}
