package handlers

import (
	"github.com/aquaman122/auto-report/internal/agent/narrative"
	"github.com/aquaman122/auto-report/internal/publisher"
	"github.com/aquaman122/auto-report/internal/renderer"
	"github.com/aquaman122/auto-report/internal/service/pipeline"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/internal/utils/validator"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
	"github.com/aquaman122/auto-report/pkg/storage"
)

type Handlers struct {
	Audio    *AudioHandler
	Meeting  *MeetingHandler
	Document *DocumentHandler
	Task     *TaskHandler
	Health   *HealthHandler
}

type Deps struct {
	Pipeline     *pipeline.Service
	Store        store.Store
	Validator    *validator.AudioValidator
	Narrative    *narrative.Generator
	Renderer     *renderer.Renderer
	Queue        queue.Queue
	Wiki         *publisher.WikiPublisher
	Archive      storage.Storage
	UploadDir    string
	SummaryDir   string
	OpenAIKeySet bool
	Production   bool
	Version      string
	Logger       logger.Logger
}

func NewHandlers(d Deps) *Handlers {
	SetProduction(d.Production)
	return &Handlers{
		Audio:    NewAudioHandler(d.Pipeline, d.Store, d.Validator, d.UploadDir, d.Logger),
		Meeting:  NewMeetingHandler(d.Store, d.Logger),
		Document: NewDocumentHandler(d.Store, d.Narrative, d.Renderer, d.Archive, d.SummaryDir, d.Logger),
		Task:     NewTaskHandler(d.Queue, d.Logger),
		Health:   NewHealthHandler(d.Store, d.Queue, d.Wiki, d.OpenAIKeySet, d.Version, d.Logger),
	}
}
