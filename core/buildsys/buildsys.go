// Package buildsys decides whether a project tree uses an acceptable build tool.
package buildsys

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Codegass/repodigger/schema"
)

// Rejection reasons, in the order they are reported.
const (
	ReasonNoDesired = "Neither Maven nor Gradle found anywhere in the project"
	ReasonAnt       = "Ant build file (build.xml) detected"
	ReasonBazel     = "Bazel build file (WORKSPACE, BUILD, or BUILD.bazel) detected"
	ReasonMixed     = "Project contains a mix of desired (Maven/Gradle) and undesired (Ant/Bazel) build systems."
)

// buildFiles maps each recognized filename to the build system it signals.
var buildFiles = map[string]schema.BuildSystem{
	"pom.xml":          schema.MavenBuild,
	"build.gradle":     schema.GradleBuild,
	"build.gradle.kts": schema.GradleBuild,
	"build.xml":        schema.AntBuild,
	"WORKSPACE":        schema.BazelBuild,
	"BUILD":            schema.BazelBuild,
	"BUILD.bazel":      schema.BazelBuild,
}

// vcsDirs are never descended. Vendored history can hold build-file-shaped blobs.
var vcsDirs = map[string]struct{}{
	".git": {},
	".hg":  {},
	".svn": {},
}

// detection accumulates which build systems were seen during one walk.
type detection map[schema.BuildSystem]bool

func (d detection) desired() bool   { return d[schema.MavenBuild] || d[schema.GradleBuild] }
func (d detection) undesired() bool { return d[schema.AntBuild] || d[schema.BazelBuild] }

// scan walks root once and returns what it found.
func scan(root string) (detection, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot classify %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot classify %q: not a directory", root)
	}

	found := make(detection, len(schema.BuildSystemOrder))
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable entries are skipped
		}
		if d.IsDir() {
			if _, skip := vcsDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if bs, ok := buildFiles[d.Name()]; ok {
			found[bs] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}
	return found, nil
}

// decide applies the allow/deny rule to a detection.
// A single disqualifying file anywhere overrides any number of qualifying ones.
func decide(found detection) schema.BuildVerdict {
	verdict := schema.BuildVerdict{
		Qualifies: found.desired() && !found.undesired(),
		Detected:  []schema.BuildSystem{},
		Reasons:   []string{},
	}
	for _, bs := range schema.BuildSystemOrder {
		if found[bs] {
			verdict.Detected = append(verdict.Detected, bs)
		}
	}
	if verdict.Qualifies {
		return verdict
	}

	if !found.desired() {
		verdict.Reasons = append(verdict.Reasons, ReasonNoDesired)
	}
	if found[schema.AntBuild] {
		verdict.Reasons = append(verdict.Reasons, ReasonAnt)
	}
	if found[schema.BazelBuild] {
		verdict.Reasons = append(verdict.Reasons, ReasonBazel)
	}
	if found.desired() && found.undesired() {
		verdict.Reasons = append(verdict.Reasons, ReasonMixed)
	}
	return verdict
}

// Classify walks root once and returns its build-system verdict.
// Detection is presence based: file contents are never read.
func Classify(root string) (schema.BuildVerdict, error) {
	found, err := scan(root)
	if err != nil {
		return schema.BuildVerdict{}, err
	}
	return decide(found), nil
}

// Describe renders detected systems for log lines, e.g. "Maven and Gradle".
func Describe(v schema.BuildVerdict) string {
	names := map[schema.BuildSystem]string{
		schema.MavenBuild:  "Maven",
		schema.GradleBuild: "Gradle",
		schema.AntBuild:    "Ant",
		schema.BazelBuild:  "Bazel",
	}
	parts := make([]string, 0, len(v.Detected))
	for _, bs := range v.Detected {
		parts = append(parts, names[bs])
	}
	if len(parts) == 0 {
		return "no build system"
	}
	return strings.Join(parts, " and ")
}
