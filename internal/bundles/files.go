// Package bundles manages the versioned BokehJS script bundles: the file set
// a runtime version consists of, fetching them from an asset origin, and the
// page-wide registry that guarantees a single live runtime version.
package bundles

import "fmt"

// SubModules are the optional runtime modules shipped next to the core
// bundle. The empty name is the core bundle itself.
var SubModules = []string{"", "gl", "mathjax", "api", "tables", "widgets"}

// DefaultBaseURL is the public Bokeh release CDN.
const DefaultBaseURL = "https://cdn.bokeh.org/bokeh/release"

// FileName returns the version-stamped bundle filename for a module. The
// core bundle omits the module name: bokeh-3.7.3.min.js,
// bokeh-gl-3.7.3.min.js, ...
func FileName(module, version string) string {
	if module == "" {
		return fmt.Sprintf("bokeh-%s.min.js", version)
	}
	return fmt.Sprintf("bokeh-%s-%s.min.js", module, version)
}

// Files returns the full bundle set for a runtime version, core first.
func Files(version string) []string {
	files := make([]string, 0, len(SubModules))
	for _, m := range SubModules {
		files = append(files, FileName(m, version))
	}
	return files
}
