// Package deps probes the external command-line tools voxbook shells out
// to: the speech engines and the per-format audio encoders.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// Tool roles, used to group the report and decide viability.
const (
	RoleEngine  = "engine"
	RoleEncoder = "encoder"
)

// Status is the probe result for one external tool.
type Status struct {
	Name         string
	Role         string
	Formats      []string // encoder output formats; empty for engines
	Installed    bool
	Path         string
	Version      string
	Instructions string
}

// tool describes how to probe one binary.
type tool struct {
	name         string
	role         string
	formats      []string
	versionArgs  []string
	instructions func() string
}

func tools() []tool {
	return []tool{
		{"espeak-ng", RoleEngine, nil, []string{"--version"}, espeakInstructions},
		{"espeak", RoleEngine, nil, []string{"--version"}, espeakInstructions},
		{"festival", RoleEngine, nil, []string{"--version"}, festivalInstructions},
		{"oggenc", RoleEncoder, []string{"vorbis"}, []string{"--version"}, packageInstructions("vorbis-tools")},
		{"flac", RoleEncoder, []string{"flac"}, []string{"--version"}, packageInstructions("flac")},
		{"lame", RoleEncoder, []string{"mp3"}, []string{"--version"}, packageInstructions("lame")},
		{"ffmpeg", RoleEncoder, []string{"vorbis", "flac", "mp3"}, []string{"-version"}, ffmpegInstructions},
	}
}

// Probe checks a single tool: locates it on PATH and asks it for a
// version string.
func probe(t tool) Status {
	status := Status{
		Name:    t.name,
		Role:    t.role,
		Formats: t.formats,
	}

	path, err := exec.LookPath(t.name)
	if err != nil {
		status.Instructions = t.instructions()
		return status
	}

	status.Installed = true
	status.Path = path
	status.Version = probeVersion(path, t.versionArgs)
	return status
}

// probeVersion runs the version command and keeps the first output line.
// Some tools print it to stderr, so combined output is used.
func probeVersion(path string, args []string) string {
	out, err := exec.Command(path, args...).CombinedOutput()
	if err != nil && len(out) == 0 {
		return "installed"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "installed"
	}
	return strings.TrimSpace(line)
}

// CheckAll probes every known tool. The error is non-nil when no speech
// engine is installed, which makes any conversion impossible.
func CheckAll() ([]Status, error) {
	var statuses []Status
	for _, t := range tools() {
		status := probe(t)
		statuses = append(statuses, status)

		if status.Installed {
			log.Debug("tool found", "name", status.Name, "path", status.Path, "version", status.Version)
		} else {
			log.Debug("tool missing", "name", status.Name)
		}
	}
	return statuses, Summarize(statuses)
}

// Summarize derives the overall verdict from a probe result set: at least
// one engine must exist. Encoders are advisory since wav output needs none
// of them.
func Summarize(statuses []Status) error {
	for _, s := range statuses {
		if s.Role == RoleEngine && s.Installed {
			return nil
		}
	}
	return fmt.Errorf("no speech engine installed (need espeak-ng, espeak, or festival)")
}

// EncodableFormats returns the output formats the probed encoders cover,
// plus wav, which is always producible.
func EncodableFormats(statuses []Status) []string {
	seen := map[string]bool{"wav": true}
	order := []string{"vorbis", "flac", "mp3", "wav"}

	for _, s := range statuses {
		if !s.Installed {
			continue
		}
		for _, f := range s.Formats {
			seen[f] = true
		}
	}

	var formats []string
	for _, f := range order {
		if seen[f] {
			formats = append(formats, f)
		}
	}
	return formats
}

func espeakInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install espeak-ng"
	case "linux":
		return linuxInstall("espeak-ng")
	default:
		return "Download from: https://github.com/espeak-ng/espeak-ng/releases"
	}
}

func festivalInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install festival"
	case "linux":
		return linuxInstall("festival")
	default:
		return "See: https://www.cstr.ed.ac.uk/projects/festival/"
	}
}

func ffmpegInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		return linuxInstall("ffmpeg")
	case "windows":
		return "Download from: https://ffmpeg.org/download.html and add to PATH"
	default:
		return "Install ffmpeg from: https://ffmpeg.org/download.html"
	}
}

func packageInstructions(pkg string) func() string {
	return func() string {
		switch runtime.GOOS {
		case "darwin":
			return "Install with: brew install " + pkg
		case "linux":
			return linuxInstall(pkg)
		default:
			return "Install the " + pkg + " package with your package manager"
		}
	}
}

// linuxInstall picks the package-manager hint for the detected distro.
func linuxInstall(pkg string) string {
	switch detectLinuxDistro() {
	case "debian", "ubuntu":
		return "Install with: sudo apt-get install " + pkg
	case "fedora", "rhel":
		return "Install with: sudo dnf install " + pkg
	case "arch":
		return "Install with: sudo pacman -S " + pkg
	default:
		return "Install with your package manager: " + pkg
	}
}

func detectLinuxDistro() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "unknown"
	}
	content := strings.ToLower(string(data))
	for _, distro := range []string{"ubuntu", "debian", "fedora", "arch"} {
		if strings.Contains(content, distro) {
			return distro
		}
	}
	if strings.Contains(content, "rhel") || strings.Contains(content, "centos") {
		return "rhel"
	}
	return "unknown"
}
