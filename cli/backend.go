package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/yoanbernabeu/docchat/api"
	"github.com/yoanbernabeu/docchat/session"
	"github.com/yoanbernabeu/docchat/watcher"
)

// outcomeOf lifts an ingest wire response into the session's vocabulary.
func outcomeOf(res api.IngestResponse) session.IngestOutcome {
	return session.IngestOutcome{
		Success: res.Success,
		Message: res.Message,
		Chunks:  res.Chunks,
		Loaded:  res.Loaded,
		Failed:  res.Failed,
	}
}

func sourcesOf(wire []api.ChatSource) []session.Source {
	sources := make([]session.Source, 0, len(wire))
	for _, src := range wire {
		sources = append(sources, session.Source{Document: src.PDF, Page: src.Page})
	}
	return sources
}

// backendSink adapts the api client to the drop-folder watcher.
type backendSink struct {
	client *api.Client
}

var _ watcher.Sink = backendSink{}

func (s backendSink) UploadPDF(ctx context.Context, path string) error {
	return s.client.Upload(ctx, path)
}

func (s backendSink) Reingest(ctx context.Context) error {
	res, err := s.client.Ingest(ctx)
	if err != nil {
		return err
	}
	if !res.Success {
		if res.Message != "" {
			return fmt.Errorf("ingestion failed: %s", res.Message)
		}
		return fmt.Errorf("ingestion failed")
	}
	log.Printf("%s", outcomeOf(res).Summary())
	return nil
}
