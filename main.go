package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	httphelper "github.com/Luzifer/go_helpers/http"
	"github.com/Luzifer/rconfig/v2"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Luzifer/webcam-cache/pkg/remote"
	"github.com/Luzifer/webcam-cache/pkg/storage"
	"github.com/Luzifer/webcam-cache/pkg/storage/gcs"
	"github.com/Luzifer/webcam-cache/pkg/storage/local"
	"github.com/Luzifer/webcam-cache/pkg/webcam"
)

var (
	cfg = struct {
		Archive        string        `flag:"archive" default:"" description:"Directory or gs://bucket/prefix to move replaced images into"`
		Listen         string        `flag:"listen" default:":3000" description:"Port/IP to listen on"`
		LogLevel       string        `flag:"log-level" default:"info" description:"Log level (debug, info, warn, error, fatal)"`
		MaxAge         time.Duration `flag:"max-age" default:"0s" description:"Consider the local copy fresh for this duration (0 = check remote headers)"`
		Quality        int           `flag:"quality" default:"85" description:"JPEG quality for resized images"`
		Remove         bool          `flag:"remove" default:"false" description:"Remove the local copy and exit"`
		Serve          bool          `flag:"serve" default:"false" description:"Serve the image through HTTP instead of a single refresh"`
		Shrink         string        `flag:"shrink" default:"" description:"Resize after fetch: percentage (50) or dimensions (200x150)"`
		Target         string        `flag:"target" default:"" description:"Local file to store the image in (default: file name of the URL)"`
		Timeout        time.Duration `flag:"timeout" default:"30s" description:"Timeout for requests to the webcam"`
		URL            string        `flag:"url" default:"" description:"URL of the webcam image"`
		UserAgent      string        `flag:"user-agent" default:"" description:"User-Agent to send to the webcam"`
		VersionAndExit bool          `flag:"version" default:"false" description:"Prints current version and exits"`
	}{}

	version = "dev"
)

func initApp() {
	rconfig.AutoEnv(true)
	if err := rconfig.ParseAndValidate(&cfg); err != nil {
		log.Fatalf("Unable to parse commandline options: %s", err)
	}

	if cfg.VersionAndExit {
		fmt.Printf("webcam-cache %s\n", version)
		os.Exit(0)
	}

	if l, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.WithError(err).Fatal("Unable to parse log level")
	} else {
		log.SetLevel(l)
	}

	if cfg.URL == "" && len(rconfig.Args()) > 1 {
		cfg.URL = rconfig.Args()[1]
	}

	if cfg.URL == "" {
		log.Fatal("No webcam URL given")
	}
}

func main() {
	initApp()

	ctx := context.Background()

	cam, err := newWebcam(ctx)
	if err != nil {
		log.WithError(err).Fatal("Unable to set up webcam")
	}

	switch {
	case cfg.Remove:
		cam.RemoveLocalFile()
		log.WithField("target", cam.Target()).Info("Removed local copy")

	case cfg.Serve:
		r := mux.NewRouter()
		newServer(cam).register(r)

		log.WithField("listen", cfg.Listen).Info("Starting HTTP server")
		if err := http.ListenAndServe(cfg.Listen, httphelper.NewHTTPLogHandler(r)); err != nil { //#nosec:G114 // Mirrors a single image, no timeouts required
			log.WithError(err).Fatal("HTTP server exited")
		}

	default:
		res, err := cam.Refresh(ctx)
		if err != nil {
			log.WithError(err).Fatal("Unable to refresh image")
		}

		log.WithFields(log.Fields{
			"archived": res.Archived,
			"fetched":  res.Fetched,
			"target":   cam.Target(),
		}).Info("Refresh finished")
	}
}

func newWebcam(ctx context.Context) (*webcam.Webcam, error) {
	policy, err := webcam.ParseShrinkPolicy(cfg.Shrink)
	if err != nil {
		return nil, err
	}

	archive, err := newArchive(ctx, cfg.Archive)
	if err != nil {
		return nil, err
	}

	return webcam.New(cfg.URL, webcam.Options{
		Target:  cfg.Target,
		Archive: archive,
		MaxAge:  cfg.MaxAge,
		Shrink:  policy,
		Quality: cfg.Quality,
		Remote: remote.New(remote.Options{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
		}),
		Logger: log.StandardLogger(),
	})
}

func newArchive(ctx context.Context, uri string) (storage.Archive, error) {
	switch {
	case uri == "":
		return nil, nil

	case strings.HasPrefix(uri, "gs://"):
		return gcs.New(ctx, uri)

	default:
		return local.New(uri), nil
	}
}
