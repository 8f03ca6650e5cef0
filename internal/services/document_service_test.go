package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf-dev/askpdf/internal/config"
	"github.com/askpdf-dev/askpdf/internal/core"
	db "github.com/askpdf-dev/askpdf/internal/core/database"
	"github.com/askpdf-dev/askpdf/internal/core/vectorstore"
	"github.com/askpdf-dev/askpdf/internal/models"
)

func newDocFixture(t *testing.T) (*DocumentService, *db.MemClient, *vectorstore.Memory, *fakeObjectClient, *fakeIngestor) {
	t.Helper()
	client := db.NewMemClient()
	index := vectorstore.NewMemory()
	obj := newFakeObjectClient()
	ing := &fakeIngestor{}
	cfg := &config.Config{BucketName: "bucket", MaxUploadBytes: 10 << 20}
	return NewDocumentService(client, obj, index, ing, cfg), client, index, obj, ing
}

func TestUploadCreatesPendingAndEnqueues(t *testing.T) {
	svc, client, _, obj, ing := newDocFixture(t)
	ctx := context.Background()

	body := strings.NewReader("%PDF-1.4 fake content")
	doc, err := svc.Upload(ctx, "user-1", "Employee Handbook.pdf", "application/pdf", 21, body)
	require.NoError(t, err)

	assert.Equal(t, "Employee Handbook", doc.Title)
	assert.Equal(t, "Employee Handbook.pdf", doc.FileName)
	assert.Equal(t, models.StatusPending, doc.Status)
	assert.Contains(t, doc.StorageURL, "bucket.s3")

	stored, err := client.GetDocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusPending, stored.Status)

	require.Len(t, ing.enqueued, 1)
	assert.Equal(t, doc.ID, ing.enqueued[0])
	assert.Len(t, obj.uploaded, 1)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc, _, _, _, ing := newDocFixture(t)

	_, err := svc.Upload(context.Background(), "user-1", "notes.txt", "text/plain", 10, strings.NewReader("hi"))
	var validation *core.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, ing.enqueued)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _, _, _, _ := newDocFixture(t)

	_, err := svc.Upload(context.Background(), "user-1", "big.pdf", "application/pdf", 11<<20, strings.NewReader("x"))
	var validation *core.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Msg, "10 MB")
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc, _, _, _, _ := newDocFixture(t)

	_, err := svc.Upload(context.Background(), "user-1", "empty.pdf", "application/pdf", 0, strings.NewReader(""))
	var validation *core.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestStatusReportsChunkCount(t *testing.T) {
	svc, client, index, _, _ := newDocFixture(t)
	doc, chunks := seedCompletedDocument(client, index, "user-1")

	status, err := svc.Status(context.Background(), doc.ID, "user-1")
	require.NoError(t, err)

	assert.Equal(t, doc.ID, status.ID)
	assert.Equal(t, models.StatusCompleted, status.Status)
	assert.Equal(t, len(chunks), status.ChunkCount)
	assert.Equal(t, 3, status.PageCount)
	assert.True(t, status.IsReady)
	assert.Nil(t, status.ErrorMessage)
}

func TestStatusOfFailedDocument(t *testing.T) {
	svc, client, index, _, _ := newDocFixture(t)
	doc, _ := seedCompletedDocument(client, index, "user-1")
	ctx := context.Background()
	require.NoError(t, client.MarkFailed(ctx, doc.ID, "extraction failed: no text"))

	status, err := svc.Status(ctx, doc.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, status.Status)
	assert.False(t, status.IsReady)
	require.NotNil(t, status.ErrorMessage)
	assert.Equal(t, "extraction failed: no text", *status.ErrorMessage)
}

func TestStatusCrossUserDenied(t *testing.T) {
	svc, client, index, _, _ := newDocFixture(t)
	doc, _ := seedCompletedDocument(client, index, "user-1")

	_, err := svc.Status(context.Background(), doc.ID, "intruder")
	var access *core.AccessError
	require.ErrorAs(t, err, &access)
}

func TestReingestOnlyTerminalStates(t *testing.T) {
	svc, client, index, _, ing := newDocFixture(t)
	doc, _ := seedCompletedDocument(client, index, "user-1")
	ctx := context.Background()

	require.NoError(t, svc.Reingest(ctx, doc.ID, "user-1"))
	assert.Equal(t, []string{doc.ID}, ing.enqueued)

	stored, err := client.GetDocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	stored.Status = models.StatusProcessing
	require.NoError(t, client.CreateDocument(ctx, stored))

	err = svc.Reingest(ctx, doc.ID, "user-1")
	var validation *core.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Len(t, ing.enqueued, 1)
}

func TestDeleteRemovesEverywhere(t *testing.T) {
	svc, client, index, obj, _ := newDocFixture(t)
	doc, _ := seedCompletedDocument(client, index, "user-1")
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, doc.ID, "user-1"))

	stored, err := client.GetDocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	count, err := client.CountChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	stats, err := index.Stats(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stats.Exists)

	require.Len(t, obj.deleted, 1)
	assert.Equal(t, "u/d/handbook.pdf", obj.deleted[0])
}

func TestDeleteToleratesMissingCollection(t *testing.T) {
	svc, client, index, _, _ := newDocFixture(t)
	doc, _ := seedCompletedDocument(client, index, "user-1")
	ctx := context.Background()
	require.NoError(t, index.Drop(ctx, doc.ID))

	require.NoError(t, svc.Delete(ctx, doc.ID, "user-1"))
}

func TestDeleteCrossUserDenied(t *testing.T) {
	svc, client, index, _, _ := newDocFixture(t)
	doc, _ := seedCompletedDocument(client, index, "user-1")

	err := svc.Delete(context.Background(), doc.ID, "intruder")
	var access *core.AccessError
	require.ErrorAs(t, err, &access)
}
