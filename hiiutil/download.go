/*
Copyright © 2020 the HII authors.
This file is part of HII.

HII is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HII is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HII.  If not, see <http://www.gnu.org/licenses/>.
*/

package hiiutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/hii/cloud"
)

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob address.
// If it is, it downloads the file into dir and
// returns the path to the downloaded file.
func maybeDownload(ctx context.Context, path, dir string) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, dir)
	}

	if cloud.IsBlob(path) {
		return downloadBlob(ctx, path, dir)
	}

	return "", fmt.Errorf("hii: input file %s does not exist", path)
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file.
func downloadHTTP(ctx context.Context, path, dir string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return "", fmt.Errorf("hii: downloading %s: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("hii: downloading %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hii: downloading %s: %s", path, resp.Status)
	}
	fname, err := downloadName(dir, path)
	if err != nil {
		return "", err
	}
	w, err := os.Create(fname)
	if err != nil {
		return "", fmt.Errorf("hii: creating file for download: %v", err)
	}
	if _, err = io.Copy(w, resp.Body); err != nil {
		w.Close()
		return "", fmt.Errorf("hii: downloading %s: %v", path, err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("hii: downloading %s: %v", path, err)
	}
	return fname, nil
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path, dir string) (string, error) {
	b, err := cloud.ReadBlob(ctx, path)
	if err != nil {
		return "", fmt.Errorf("hii: downloading %s: %v", path, err)
	}
	fname, err := downloadName(dir, path)
	if err != nil {
		return "", err
	}
	if err = ioutil.WriteFile(fname, b, 0644); err != nil {
		return "", fmt.Errorf("hii: saving download of %s: %v", path, err)
	}
	return fname, nil
}

// downloadName returns a unique location within dir for a download
// of path, keeping the base name of path.
func downloadName(dir, path string) (string, error) {
	d, err := ioutil.TempDir(dir, "dl")
	if err != nil {
		return "", fmt.Errorf("hii: creating temporary download directory: %v", err)
	}
	return filepath.Join(d, filepath.Base(path)), nil
}
