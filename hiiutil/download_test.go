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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spatialmodel/hii/cloud"
)

func TestMaybeDownloadLocal(t *testing.T) {
	dir := testDir(t)
	f := writeTestFile(t, dir, "local.nc", "x")
	k, err := maybeDownload(context.Background(), f, dir)
	if err != nil {
		t.Fatal(err)
	}
	if k != f {
		t.Errorf("expected %s, got %s", f, k)
	}
}

func TestMaybeDownloadMissing(t *testing.T) {
	if _, err := maybeDownload(context.Background(), "/blah/test.nc", testDir(t)); err == nil {
		t.Error("expected an error for a missing local file")
	}
}

func TestMaybeDownloadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/pop.nc" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("population"))
	}))
	defer srv.Close()
	dir := testDir(t)
	ctx := context.Background()

	k, err := maybeDownload(ctx, srv.URL+"/data/pop.nc", dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(k) != "pop.nc" {
		t.Errorf("expected tempDir/pop.nc, got %s", k)
	}
	b, err := ioutil.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "population" {
		t.Errorf("downloaded %q", b)
	}

	if _, err := maybeDownload(ctx, srv.URL+"/missing.nc", dir); err == nil {
		t.Error("expected an error for a missing remote file")
	}
}

func TestMaybeDownloadBlob(t *testing.T) {
	ctx := context.Background()
	const addr = "mem://downloadtest/lc/lc2015.nc"
	if err := cloud.WriteBlob(ctx, addr, []byte("landcover")); err != nil {
		t.Fatal(err)
	}
	dir := testDir(t)
	k, err := maybeDownload(ctx, addr, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(k) != "lc2015.nc" {
		t.Errorf("expected tempDir/lc2015.nc, got %s", k)
	}
	b, err := ioutil.ReadFile(k)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "landcover" {
		t.Errorf("downloaded %q", b)
	}

	// Two downloads with the same base name do not collide.
	k2, err := maybeDownload(ctx, addr, dir)
	if err != nil {
		t.Fatal(err)
	}
	if k2 == k {
		t.Error("repeated download reused the same location")
	}
}
