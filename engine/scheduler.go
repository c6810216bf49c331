package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/drummonds/sermonkit/engine/compositor"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

const assetProbeTimeout = 10 * time.Second

// AssetStatus is the outcome of probing one card asset
type AssetStatus struct {
	Asset  string
	URL    string
	Status int
	Err    error
}

// OK reports whether the asset answered with a 2xx status
func (s AssetStatus) OK() bool {
	return s.Err == nil && s.Status >= 200 && s.Status < 300
}

// InitializeSchedules starts all the cron jobs (currently just the asset probe)
func (serverHandler *ServerHandler) InitializeSchedules() *cron.Cron {
	interval := serverHandler.ServerConfig.AssetCheckInterval
	if interval <= 0 {
		Logger.Info("Asset probe disabled", "interval_minutes", interval)
		return nil
	}

	// Run the probe immediately at startup in a goroutine
	Logger.Info("Running asset probe at startup")
	go serverHandler.assetProbeJobFunc()

	c := cron.New()
	var probeJob cron.Job
	probeJob = cron.FuncJob(serverHandler.assetProbeJobFunc)
	probeJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(probeJob) //ensure we don't kick off another if old one is still running
	if _, err := c.AddJob(fmt.Sprintf("@every %dm", interval), probeJob); err != nil {
		Logger.Error("Unable to schedule asset probe", "error", err)
		return nil
	}
	Logger.Info("Adding asset probe scheduler", "interval_minutes", interval)
	c.Start()
	return c
}

func (serverHandler *ServerHandler) assetProbeJobFunc() {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in asset probe", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), assetProbeTimeout*time.Duration(len(compositor.Assets)))
	defer cancel()

	client := &http.Client{Timeout: assetProbeTimeout}
	for _, status := range ProbeAssets(ctx, client, serverHandler.ServerConfig.AssetBaseURL) {
		if status.OK() {
			Logger.Debug("Card asset reachable", "asset", status.Asset, "url", status.URL)
			continue
		}
		Logger.Warn("Card asset unreachable, social images will render without it",
			"asset", status.Asset, "url", status.URL, "status", status.Status, "error", status.Err)
	}
}

// ProbeAssets sends a HEAD request for every card asset under baseURL
func ProbeAssets(ctx context.Context, client *http.Client, baseURL string) []AssetStatus {
	statuses := make([]AssetStatus, 0, len(compositor.Assets))
	for _, asset := range compositor.Assets {
		status := AssetStatus{Asset: asset, URL: compositor.AssetURL(baseURL, asset)}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, status.URL, nil)
		if err != nil {
			status.Err = err
			statuses = append(statuses, status)
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			status.Err = err
		} else {
			status.Status = resp.StatusCode
			resp.Body.Close()
		}
		statuses = append(statuses, status)
	}
	return statuses
}
