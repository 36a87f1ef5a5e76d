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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

func helperLog(t *testing.T) logrus.FieldLogger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}

func TestMaybeDownloadLocal(t *testing.T) {
	if k := maybeDownload(context.Background(), "download.go", helperLog(t)); k != "download.go" {
		t.Error("Expected download.go, got ", k)
	}
}

func TestMaybeDownloadLocal2(t *testing.T) {
	if k := maybeDownload(context.Background(), "/blah/test/", helperLog(t)); k != "/blah/test/" {
		t.Error("Expected /blah/test/, got ", k)
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tables/countries.csv" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "code,name\n1,A\n")
	}))
	defer srv.Close()

	defer func(b func() backoff.BackOff) { downloadBackOff = b }(downloadBackOff)
	downloadBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1)
	}

	t.Run("ok", func(t *testing.T) {
		k := maybeDownload(context.Background(), srv.URL+"/tables/countries.csv", helperLog(t))
		if filepath.Base(k) != "countries.csv" {
			t.Fatal("Expected tempDir/countries.csv, got ", k)
		}
		b, err := ioutil.ReadFile(k)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "code,name\n1,A\n" {
			t.Errorf("wrong contents %q", b)
		}
		if err := removeDownloads(); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Dir(k)); !os.IsNotExist(err) {
			t.Errorf("download directory %s was not removed", filepath.Dir(k))
		}
	})
	t.Run("not found", func(t *testing.T) {
		p := srv.URL + "/missing.csv"
		if k := maybeDownload(context.Background(), p, helperLog(t)); k != p {
			t.Errorf("Expected %s, got %s", p, k)
		}
	})
}
