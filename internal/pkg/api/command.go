package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"github.com/sebastienferry/site-purge/internal/pkg/runner"
)

// Jobs runs purge jobs in the background.
type Jobs interface {
	Submit() (runner.Job, error)
	Current() (runner.Job, bool)
}

type CommandApi struct {
	jobs          Jobs
	confirmations *Confirmations
	phrase        string
	collections   []purge.CollectionName
}

func NewCommandApi(jobs Jobs, confirmations *Confirmations, phrase string, collections []purge.CollectionName) *CommandApi {
	return &CommandApi{
		jobs:          jobs,
		confirmations: confirmations,
		phrase:        phrase,
		collections:   collections,
	}
}

type PurgeIntentResponse struct {
	Intent
	Collections []purge.CollectionName `json:"collections"`
}

func (a *CommandApi) PurgeIntent(c *gin.Context) {
	intent := a.confirmations.Create(a.phrase)
	log.InfoWithFields("purge intent created", log.Fields{
		"intent":  intent.Id,
		"subject": c.GetString(subjectKey),
		"pending": a.confirmations.Pending(),
	})
	c.JSON(http.StatusCreated, PurgeIntentResponse{Intent: intent, Collections: a.collections})
}

type PurgeRequest struct {
	ConfirmationId string `json:"confirmationId" binding:"required"`
	Phrase         string `json:"phrase" binding:"required"`
}

func (a *CommandApi) RunPurge(c *gin.Context) {

	var request PurgeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A busy runner leaves the confirmation usable for a later attempt
	if current, ok := a.jobs.Current(); ok && current.Active() {
		c.JSON(http.StatusConflict, gin.H{"error": runner.ErrBusy.Error(), "job": current.Id})
		return
	}

	if err := a.confirmations.Consume(request.ConfirmationId, request.Phrase); err != nil {
		log.WarnWithFields("purge confirmation rejected", log.Fields{
			"intent":  request.ConfirmationId,
			"subject": c.GetString(subjectKey),
			"error":   err,
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := a.jobs.Submit()
	switch {
	case errors.Is(err, runner.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "job": job.Id})
		return
	case errors.Is(err, runner.ErrQueueFull):
		// Probably due to too much commands enqueued
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.InfoWithFields("purge command sent", log.Fields{
		"job":     job.Id,
		"subject": c.GetString(subjectKey),
	})
	c.JSON(http.StatusAccepted, gin.H{"job": job.Id, "state": job.State})
}

func (a *CommandApi) PurgeStatus(c *gin.Context) {
	job, ok := a.jobs.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no purge job"})
		return
	}
	c.JSON(http.StatusOK, job)
}
