package imageservice

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnsupportedType = errors.New("unsupported image content type")
	ErrUploadFailed    = errors.New("image upload failed")
	ErrNotManaged      = errors.New("url is not managed by this store")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// GithubStore hosts images as files in a GitHub repository through the
// contents API and serves them back via raw.githubusercontent.com.
type GithubStore struct {
	client *http.Client
	token  string
	owner  string
	repo   string
	branch string
	apiURL string
	rawURL string
}

func NewGithubStore(token, owner, repo, branch string) *GithubStore {
	return &GithubStore{
		client: &http.Client{Timeout: 10 * time.Second},
		token:  token,
		owner:  owner,
		repo:   repo,
		branch: branch,
		apiURL: "https://api.github.com",
		rawURL: "https://raw.githubusercontent.com",
	}
}

// Upload stores the image under a random name and returns its public URL.
func (s *GithubStore) Upload(ctx context.Context, content []byte, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	name, err := randomName()
	if err != nil {
		return "", err
	}
	path := "images/" + name + ext

	body, err := json.Marshal(map[string]string{
		"message": "add " + path,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  s.branch,
	})
	if err != nil {
		return "", err
	}

	req, err := s.newRequest(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUploadFailed, resp.StatusCode)
	}

	return fmt.Sprintf("%s/%s/%s/%s/%s", s.rawURL, s.owner, s.repo, s.branch, path), nil
}

// Delete removes a previously uploaded image. The contents API requires the
// current blob sha, so this is a lookup followed by a delete.
func (s *GithubStore) Delete(ctx context.Context, url string) error {
	path, err := s.pathFromURL(url)
	if err != nil {
		return err
	}

	sha, err := s.blobSHA(ctx, path)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"message": "remove " + path,
		"sha":     sha,
		"branch":  s.branch,
	})
	if err != nil {
		return err
	}

	req, err := s.newRequest(ctx, http.MethodDelete, path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrUploadFailed, resp.StatusCode)
	}

	return nil
}

func (s *GithubStore) blobSHA(ctx context.Context, path string) (string, error) {
	req, err := s.newRequest(ctx, http.MethodGet, path+"?ref="+s.branch, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUploadFailed, resp.StatusCode)
	}

	var data struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}

	return data.SHA, nil
}

func (s *GithubStore) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.apiURL, s.owner, s.repo, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	return req, nil
}

func (s *GithubStore) pathFromURL(url string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/%s/%s/", s.rawURL, s.owner, s.repo, s.branch)
	if !strings.HasPrefix(url, prefix) {
		return "", ErrNotManaged
	}
	return strings.TrimPrefix(url, prefix), nil
}

func randomName() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
