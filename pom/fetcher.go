// Package pom downloads library jars from a Maven repository so their
// classes can be packed for the class path.
package pom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

const (
	DefaultMavenRepoURL = "https://repo1.maven.org/maven2"
	EnvMavenRepoURL     = "MAVEN_REPO_URL"
)

// Coordinate names a jar: groupId:artifactId[:classifier]:version.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
}

func ParseCoordinate(coord string) (Coordinate, error) {
	parts := strings.Split(coord, ":")
	for _, p := range parts {
		if p == "" {
			parts = nil
			break
		}
	}
	switch len(parts) {
	case 3:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
	case 4:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Classifier: parts[2], Version: parts[3]}, nil
	default:
		return Coordinate{}, fmt.Errorf("invalid Maven coordinate: %s (expected groupId:artifactId:version or groupId:artifactId:classifier:version)", coord)
	}
}

func (c Coordinate) String() string {
	if c.Classifier != "" {
		return c.GroupID + ":" + c.ArtifactID + ":" + c.Classifier + ":" + c.Version
	}
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// FileName is the jar's name in the repository.
func (c Coordinate) FileName() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s-%s-%s.jar", c.ArtifactID, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s-%s.jar", c.ArtifactID, c.Version)
}

type MavenFetcher struct {
	RepoURL    string
	httpClient *http.Client
}

// NewMavenFetcher uses $MAVEN_REPO_URL, or Maven Central if unset.
func NewMavenFetcher() *MavenFetcher {
	repoURL := os.Getenv(EnvMavenRepoURL)
	if repoURL == "" {
		repoURL = DefaultMavenRepoURL
	}
	return &MavenFetcher{
		RepoURL:    strings.TrimSuffix(repoURL, "/"),
		httpClient: &http.Client{},
	}
}

func (f *MavenFetcher) JarURL(c Coordinate) string {
	groupPath := strings.ReplaceAll(c.GroupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s", f.RepoURL, groupPath, c.ArtifactID, c.Version, c.FileName())
}

// DownloadJar fetches the jar for c into destDir and returns its path.
func (f *MavenFetcher) DownloadJar(ctx context.Context, c Coordinate, destDir string) (string, error) {
	return f.Download(ctx, f.JarURL(c), filepath.Join(destDir, c.FileName()))
}

// Download fetches url into destPath. A partial file is removed on
// failure.
func (f *MavenFetcher) Download(ctx context.Context, url, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("download JAR: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download JAR: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download JAR: HTTP %d for %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	file, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, resp.Body)
	if err != nil {
		file.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	commonlog.GetLogger("codeonline.pom").Infof("downloaded %s (%d bytes)", url, n)
	return destPath, nil
}
