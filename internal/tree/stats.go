package tree

// Stats counts what a build encountered.
type Stats struct {
	Directories        int `json:"directories"`
	ContentNodes       int `json:"contentNodes"`
	RedirectNodes      int `json:"redirectNodes"`
	DirectoryRedirects int `json:"directoryRedirects"`
	IndexPages         int `json:"indexPages"`
	ContentFiles       int `json:"contentFiles"`
	StaticFiles        int `json:"staticFiles"`
	ControlFiles       int `json:"controlFiles"`
	SkippedHidden      int `json:"skippedHidden"` // dot-directories
	ShadowedByRedirect int `json:"shadowedByRedirect"`
	PrunedDirectories  int `json:"prunedDirectories"`
	OmittedByTOC       int `json:"omittedByToc"`
}

// Add folds other into s.
func (s *Stats) Add(other Stats) {
	s.Directories += other.Directories
	s.ContentNodes += other.ContentNodes
	s.RedirectNodes += other.RedirectNodes
	s.DirectoryRedirects += other.DirectoryRedirects
	s.IndexPages += other.IndexPages
	s.ContentFiles += other.ContentFiles
	s.StaticFiles += other.StaticFiles
	s.ControlFiles += other.ControlFiles
	s.SkippedHidden += other.SkippedHidden
	s.ShadowedByRedirect += other.ShadowedByRedirect
	s.PrunedDirectories += other.PrunedDirectories
	s.OmittedByTOC += other.OmittedByTOC
}

// Files returns the number of source files that were copied.
func (s Stats) Files() int {
	return s.ContentFiles + s.StaticFiles
}
