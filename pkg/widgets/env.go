package widgets

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-drift/signage/pkg/api"
)

// Env supplies what the widgets of a layout need from the outside world.
// The zero Env is usable for layouts without live data widgets.
type Env struct {
	Lecturers LecturerSource
	Content   ContentSource
	// BlobURL returns the address of an uploaded file. It defaults to
	// /api/content/{id}/blob on the current origin.
	BlobURL func(id int) string
	// StaticRoot is where the display assets are served. Defaults to /static.
	StaticRoot string
	// MediaDir, when set, holds uploaded files named by content id. Local
	// images found there are emitted with their intrinsic size.
	MediaDir string

	DepartmentPeriod time.Duration
	ContentPeriod    time.Duration
}

// NewEnv returns an Env backed by client.
func NewEnv(client *api.Client) Env {
	return Env{
		Lecturers: client,
		Content:   client,
		BlobURL:   client.BlobURL,
	}
}

func (env Env) blobURL(id int) string {
	if env.BlobURL != nil {
		return env.BlobURL(id)
	}
	return fmt.Sprintf("/api/content/%d/blob", id)
}

func (env Env) static(name string) string {
	root := env.StaticRoot
	if root == "" {
		root = "/static"
	}
	return path.Join(root, name)
}

func (env Env) qrFallback() string { return env.static(path.Base(QRCodeFailureImage)) }

func (env Env) stylesheet() string { return env.static(path.Base(DefaultStylesheet)) }

func (env Env) departmentPeriod() time.Duration {
	if env.DepartmentPeriod > 0 {
		return env.DepartmentPeriod
	}
	return DefaultDepartmentPeriod
}

func (env Env) contentPeriod() time.Duration {
	if env.ContentPeriod > 0 {
		return env.ContentPeriod
	}
	return DefaultContentPeriod
}

// localImage builds a LocalImage for an uploaded file, reading its size
// from MediaDir when configured.
func (env Env) localImage(id int, caption *Caption) LocalImage {
	img := LocalImage{Src: env.blobURL(id), Caption: caption}
	if env.MediaDir != "" {
		if w, h, err := ImageSize(filepath.Join(env.MediaDir, strconv.Itoa(id))); err == nil {
			img.Width, img.Height = w, h
		}
	}
	return img
}
