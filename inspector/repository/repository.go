package repository

// Project is the project root discovered by Detector.DetectProject.
type Project struct {
	// RootPath is the absolute path to the directory the go.mod marker was
	// found in, or the starting directory itself when no marker was found.
	RootPath string
}
