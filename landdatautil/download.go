/*
Copyright © 2019 the LandData authors.
This file is part of LandData.

LandData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

LandData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with LandData.  If not, see <http://www.gnu.org/licenses/>.
*/

package landdatautil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// downloadBackOff returns the retry policy for downloads.
var downloadBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	return backoff.WithMaxRetries(b, 5)
}

// downloads holds the temporary directories of downloaded files.
var downloads struct {
	sync.Mutex
	dirs []string
}

// removeDownloads deletes every file downloaded by maybeDownload.
func removeDownloads() error {
	downloads.Lock()
	defer downloads.Unlock()
	var firstErr error
	for _, d := range downloads.dirs {
		if err := os.RemoveAll(d); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	downloads.dirs = nil
	return firstErr
}

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL.
// If it's a URL, it downloads the file and
// returns the path to the downloaded file.
// Otherwise, or if the download fails, the given path is returned and
// the problem is logged, so that opening the file reports the error.
// Downloaded files are kept until removeDownloads is called.
func maybeDownload(ctx context.Context, p string, log logrus.FieldLogger) string {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		return p
	}
	if !isURL(p) {
		return p
	}
	dir, err := ioutil.TempDir("", "landdata")
	if err != nil {
		log.WithError(err).Error("creating temporary download directory")
		return p
	}
	u, err := url.Parse(p)
	if err != nil {
		os.RemoveAll(dir)
		log.WithError(err).Errorf("parsing %s", p)
		return p
	}
	dst := filepath.Join(dir, path.Base(u.Path))
	err = backoff.RetryNotify(
		func() error { return downloadHTTP(ctx, p, dst) },
		backoff.WithContext(downloadBackOff(), ctx),
		func(err error, d time.Duration) {
			log.Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		os.RemoveAll(dir)
		log.WithError(err).Errorf("downloading %s", p)
		return p
	}
	downloads.Lock()
	downloads.dirs = append(downloads.dirs, dir)
	downloads.Unlock()
	log.WithField("file", dst).Infof("downloaded %s", p)
	return dst
}

// downloadHTTP downloads the file at the given URL to dst.
func downloadHTTP(ctx context.Context, p, dst string) error {
	req, err := http.NewRequest("GET", p, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("landdata: downloading %s: %s", p, resp.Status)
	}
	w, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("landdata: failed creating file for download: %v", err)
	}
	if _, err = io.Copy(w, resp.Body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
