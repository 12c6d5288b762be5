package library

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pdfshelf/internal/factory"
	factoryMocks "pdfshelf/internal/factory/mocks"
	"pdfshelf/internal/model"
	"pdfshelf/internal/store"
	storeMocks "pdfshelf/internal/store/mocks"
)

// storedEcho mimics the store's Put contract: the stored record equals the
// submitted one with size recomputed from the buffer.
func storedEcho() func(context.Context, *model.Document) *model.Document {
	return func(_ context.Context, d *model.Document) *model.Document {
		out := *d
		out.Size = int64(len(d.Data))
		return &out
	}
}

func TestLibraryService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		data        []byte
		docName     string
		cover       string
		setupMocks  func(mStore *storeMocks.MockDocumentStore)
		wantErr     error
		checkStored func(t *testing.T, doc *model.Document)
	}{
		{
			name:    "happy path",
			data:    []byte("%PDF-1.4 payload"),
			docName: "taxes.pdf",
			setupMocks: func(mStore *storeMocks.MockDocumentStore) {
				mStore.On("Put", ctx, mock.MatchedBy(func(d *model.Document) bool {
					return d.ID != "" && d.Name == "taxes.pdf" && d.MimeType == model.MimeTypePDF && d.AddedAt > 0
				})).Return(storedEcho(), nil)
				mStore.On("List", ctx).Return([]model.Document{}, nil)
			},
			checkStored: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, int64(len("%PDF-1.4 payload")), doc.Size)
				assert.Empty(t, doc.CoverImage)
			},
		},
		{
			name:    "five megabyte upload without cover",
			data:    bytes.Repeat([]byte{0x25}, 5*1024*1024),
			docName: "big.pdf",
			setupMocks: func(mStore *storeMocks.MockDocumentStore) {
				mStore.On("Put", ctx, mock.Anything).Return(storedEcho(), nil)
				mStore.On("List", ctx).Return([]model.Document{}, nil)
			},
			checkStored: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, int64(5*1024*1024), doc.Size)
				assert.Empty(t, doc.CoverImage)
			},
		},
		{
			name:       "validation - empty data",
			data:       nil,
			docName:    "empty.pdf",
			setupMocks: func(mStore *storeMocks.MockDocumentStore) {},
			wantErr:    ErrDataRequired,
		},
		{
			name:       "validation - blank name",
			data:       []byte("x"),
			docName:    "   ",
			setupMocks: func(mStore *storeMocks.MockDocumentStore) {},
			wantErr:    ErrNameRequired,
		},
		{
			name:       "validation - malformed cover image",
			data:       []byte("x"),
			docName:    "a.pdf",
			cover:      "not-a-data-url",
			setupMocks: func(mStore *storeMocks.MockDocumentStore) {},
			wantErr:    ErrInvalidCover,
		},
		{
			name:    "quota exceeded surfaces to the caller",
			data:    []byte("x"),
			docName: "a.pdf",
			setupMocks: func(mStore *storeMocks.MockDocumentStore) {
				mStore.On("Put", ctx, mock.Anything).Return(nil, store.ErrQuotaExceeded)
			},
			wantErr: store.ErrQuotaExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockDocumentStore)
			svc := NewService(mStore, nil, time.Minute, nil)

			tt.setupMocks(mStore)

			doc, err := svc.Upload(ctx, tt.data, tt.docName, "", tt.cover)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, doc)
				if tt.checkStored != nil {
					tt.checkStored(t, doc)
				}
			}
			mStore.AssertExpectations(t)
		})
	}
}

func TestLibraryService_Upload_CoverAccepted(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockDocumentStore)
	svc := NewService(mStore, nil, time.Minute, nil)

	cover := "data:image/png;base64,aGVsbG8="
	mStore.On("Put", ctx, mock.MatchedBy(func(d *model.Document) bool {
		return d.CoverImage == cover
	})).Return(storedEcho(), nil)
	mStore.On("List", ctx).Return([]model.Document{}, nil)

	doc, err := svc.Upload(ctx, []byte("x"), "with-cover.pdf", "", cover)

	assert.NoError(t, err)
	assert.Equal(t, cover, doc.CoverImage)
	mStore.AssertExpectations(t)
}

func TestLibraryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("generated bytes flow into the store", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		mGen := new(factoryMocks.MockGenerator)
		svc := NewService(mStore, mGen, time.Minute, nil)

		pdfBytes := []byte("%PDF-1.4 generated")
		mGen.On("Generate", "Notes", "Hello world").Return(pdfBytes, nil)
		mStore.On("Put", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.Name == "Notes" && bytes.Equal(d.Data, pdfBytes) && d.MimeType == model.MimeTypePDF
		})).Return(storedEcho(), nil)
		mStore.On("List", ctx).Return([]model.Document{}, nil)

		doc, err := svc.Create(ctx, "Notes", "Hello world", "")

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, int64(len(pdfBytes)), doc.Size)
		mStore.AssertExpectations(t)
		mGen.AssertExpectations(t)
	})

	t.Run("unsupported content stores nothing", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		mGen := new(factoryMocks.MockGenerator)
		svc := NewService(mStore, mGen, time.Minute, nil)

		mGen.On("Generate", "Notes", "日本語").Return(nil, factory.ErrUnsupportedContent)

		doc, err := svc.Create(ctx, "Notes", "日本語", "")

		assert.ErrorIs(t, err, factory.ErrUnsupportedContent)
		assert.Nil(t, doc)
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("blank title rejected before generation", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		mGen := new(factoryMocks.MockGenerator)
		svc := NewService(mStore, mGen, time.Minute, nil)

		_, err := svc.Create(ctx, "  ", "body", "")

		assert.ErrorIs(t, err, ErrTitleRequired)
		mGen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})
}

// End-to-end through the real generator: title "Notes", body "Hello world"
// yields a real PDF whose stored record keeps all metadata consistent.
func TestLibraryService_Create_RealGenerator(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockDocumentStore)
	svc := NewService(mStore, factory.New(), time.Minute, nil)

	mStore.On("Put", ctx, mock.MatchedBy(func(d *model.Document) bool {
		return bytes.HasPrefix(d.Data, []byte("%PDF-")) && d.Name == "Notes" && d.MimeType == model.MimeTypePDF
	})).Return(storedEcho(), nil)
	mStore.On("List", ctx).Return([]model.Document{}, nil)

	doc, err := svc.Create(ctx, "Notes", "Hello world", "")

	require.NoError(t, err)
	assert.Equal(t, "Notes", doc.Name)
	assert.Equal(t, model.MimeTypePDF, doc.MimeType)
	assert.Equal(t, int64(len(doc.Data)), doc.Size)
	mStore.AssertExpectations(t)
}

func TestLibraryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path resyncs the view", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		mStore.On("Delete", ctx, "doc-1").Return(nil)
		mStore.On("List", ctx).Return([]model.Document{}, nil)

		assert.NoError(t, svc.Delete(ctx, "doc-1"))
		mStore.AssertExpectations(t)
	})

	t.Run("absent id is success", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		mStore.On("Delete", ctx, "ghost").Return(nil).Twice()
		mStore.On("List", ctx).Return([]model.Document{}, nil).Twice()

		assert.NoError(t, svc.Delete(ctx, "ghost"))
		assert.NoError(t, svc.Delete(ctx, "ghost"))
	})

	t.Run("empty id", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		assert.ErrorIs(t, svc.Delete(ctx, ""), ErrIDRequired)
	})

	t.Run("deleted document is gone from get", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		mStore.On("Delete", ctx, "doc-1").Return(nil)
		mStore.On("List", ctx).Return([]model.Document{}, nil)
		mStore.On("Get", ctx, "doc-1").Return(nil, store.ErrNotFound)

		require.NoError(t, svc.Delete(ctx, "doc-1"))

		_, err := svc.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLibraryService_View(t *testing.T) {
	ctx := context.Background()

	t.Run("most recent first", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		// store order is insertion order: t1 < t2 < t3
		mStore.On("List", ctx).Return([]model.Document{
			{ID: "d1", AddedAt: 1000},
			{ID: "d2", AddedAt: 2000},
			{ID: "d3", AddedAt: 3000},
		}, nil)

		require.NoError(t, svc.Refresh(ctx))

		view := svc.Documents()
		require.Len(t, view, 3)
		assert.Equal(t, "d3", view[0].ID)
		assert.Equal(t, "d2", view[1].ID)
		assert.Equal(t, "d1", view[2].ID)
	})

	t.Run("equal timestamps keep insertion order", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		mStore.On("List", ctx).Return([]model.Document{
			{ID: "first", AddedAt: 2000},
			{ID: "second", AddedAt: 2000},
			{ID: "older", AddedAt: 1000},
		}, nil)

		require.NoError(t, svc.Refresh(ctx))

		view := svc.Documents()
		require.Len(t, view, 3)
		assert.Equal(t, "first", view[0].ID)
		assert.Equal(t, "second", view[1].ID)
		assert.Equal(t, "older", view[2].ID)
	})

	t.Run("unavailable store surfaces", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		mStore.On("List", ctx).Return(nil, store.ErrUnavailable)

		assert.ErrorIs(t, svc.Refresh(ctx), store.ErrUnavailable)
	})

	t.Run("callers cannot mutate the cached view", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		mStore.On("List", ctx).Return([]model.Document{{ID: "d1", AddedAt: 1}}, nil)
		require.NoError(t, svc.Refresh(ctx))

		view := svc.Documents()
		view[0].ID = "mutated"

		assert.Equal(t, "d1", svc.Documents()[0].ID)
	})
}

func TestLibraryService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a resolvable handle", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		doc := &model.Document{ID: "doc-1", Name: "Notes", MimeType: model.MimeTypePDF, Data: []byte("pdf"), Size: 3}
		mStore.On("Get", ctx, "doc-1").Return(doc, nil)

		handle, err := svc.Open(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", handle.DocumentID)
		assert.NotEmpty(t, handle.Token)

		resolved, err := svc.Opened(handle.Token)
		require.NoError(t, err)
		assert.Equal(t, doc.Data, resolved.Data)
	})

	t.Run("unknown token", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		_, err := svc.Opened("nope")
		assert.ErrorIs(t, err, ErrHandleExpired)
	})

	t.Run("delete releases outstanding handles", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		doc := &model.Document{ID: "doc-1", Data: []byte("pdf")}
		mStore.On("Get", ctx, "doc-1").Return(doc, nil)
		mStore.On("Delete", ctx, "doc-1").Return(nil)
		mStore.On("List", ctx).Return([]model.Document{}, nil)

		handle, err := svc.Open(ctx, "doc-1")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, "doc-1"))

		_, err = svc.Opened(handle.Token)
		assert.ErrorIs(t, err, ErrHandleExpired)
	})

	t.Run("missing document", func(t *testing.T) {
		mStore := new(storeMocks.MockDocumentStore)
		svc := NewService(mStore, nil, time.Minute, nil)

		mStore.On("Get", ctx, "ghost").Return(nil, store.ErrNotFound)

		_, err := svc.Open(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestNextAddedAt_Monotonic(t *testing.T) {
	svc := &libraryService{}

	var prev int64
	for i := 0; i < 100; i++ {
		ts := svc.nextAddedAt()
		assert.GreaterOrEqual(t, ts, prev)
		prev = ts
	}
}

func TestValidCoverImage(t *testing.T) {
	assert.True(t, validCoverImage("data:image/png;base64,aGVsbG8="))
	assert.True(t, validCoverImage("data:image/jpeg;base64,aGk="))
	assert.False(t, validCoverImage("data:image/png;base64,%%%"))
	assert.False(t, validCoverImage("data:text/plain;base64,aGk="))
	assert.False(t, validCoverImage("plain string"))
	assert.False(t, validCoverImage("data:image/png,missing-encoding"))
}

func TestUploadIsNotCancellable_RunsToCompletion(t *testing.T) {
	// A put that has been issued completes even if the caller's context is
	// already done; the store call decides, not the library.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mStore := new(storeMocks.MockDocumentStore)
	svc := NewService(mStore, nil, time.Minute, nil)

	mStore.On("Put", mock.Anything, mock.Anything).Return(storedEcho(), nil)
	mStore.On("List", mock.Anything).Return([]model.Document{}, nil)

	doc, err := svc.Upload(ctx, []byte("x"), "a.pdf", "", "")

	assert.NoError(t, err)
	assert.NotNil(t, doc)
}
