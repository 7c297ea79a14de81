package csvsync

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"dict-manager/core/storage"
	"dict-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

func TestMirror_ExportUploadsAndPrunes(t *testing.T) {
	codec, store, _ := setupCodec(t)
	ctx := context.Background()
	seedGame(t, store, "Kirby", "kirby", map[string][2]string{"カービィ": {"人名", "かーびぃ"}})

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "dicts").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "dicts", minio.MakeBucketOptions{Region: "eu"}).Return(nil)
	client.On("PutObject", mock.Anything, "dicts", mock.MatchedBy(func(key string) bool {
		return key == "mirror/games.csv" || key == "mirror/categories.csv" || key == "mirror/game-kirby.csv"
	}), mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil).Times(3)
	client.On("ListObjects", mock.Anything, "dicts", minio.ListObjectsOptions{Prefix: "mirror/", Recursive: true}).
		Return(objects("mirror/games.csv", "mirror/game-old.csv", "mirror/readme.md"))
	client.On("RemoveObject", mock.Anything, "dicts", "mirror/game-old.csv", mock.Anything).Return(nil).Once()

	mirror := NewMirror(codec, client, storage.Config{Bucket: "dicts", Prefix: "/mirror/", Region: "eu"}, zap.NewNop())

	files, err := mirror.ExportFiles(ctx, csvDir)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "RemoveObject", mock.Anything, "dicts", "mirror/readme.md", mock.Anything)
}

func TestMirror_UploadFailureDoesNotFailExport(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()
	seedGame(t, store, "Kirby", "kirby", map[string][2]string{"カービィ": {"人名", "かーびぃ"}})

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "dicts").Return(false, errors.New("connection refused"))

	mirror := NewMirror(codec, client, storage.Config{Bucket: "dicts"}, zap.NewNop())
	require.NoError(t, mirror.ExportDirectory(ctx, csvDir))

	exists, err := afero.Exists(fs, csvDir+"/game-kirby.csv")
	require.NoError(t, err)
	assert.True(t, exists)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMirror_Pull(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()

	manifest := "id,name,code,created_at,updated_at\n7,Kirby,kirby,,\n"
	gameFile := "# Game: Kirby (Code: kirby)\ncategory_name,reading,word,description\n人名,かーびぃ,カービィ,\n"

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "dicts", minio.ListObjectsOptions{Prefix: "csv/", Recursive: true}).
		Return(objects("csv/games.csv", "csv/game-kirby.csv", "csv/notes.txt"))
	client.On("GetObject", mock.Anything, "dicts", "csv/games.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader(manifest)), nil).Once()
	client.On("GetObject", mock.Anything, "dicts", "csv/game-kirby.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader(gameFile)), nil).Once()

	mirror := NewMirror(codec, client, storage.Config{Bucket: "dicts", Prefix: "csv"}, zap.NewNop())
	files, err := mirror.Pull(ctx, csvDir)
	require.NoError(t, err)
	assert.Equal(t, []string{csvDir + "/games.csv", csvDir + "/game-kirby.csv"}, files)
	assert.Equal(t, gameFile, readFile(t, fs, csvDir+"/game-kirby.csv"))
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "GetObject", mock.Anything, "dicts", "csv/notes.txt", mock.Anything)

	// The pulled directory imports like any other
	summary, err := codec.Import(ctx, csvDir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.GamesCreated)
	assert.Equal(t, 1, summary.EntriesCreated)

	game, err := store.Games.GetByID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, "kirby", game.Code)
}

// lister streams keys on an unbuffered channel the way minio does and closes
// done once its goroutine exits.
func lister(done chan struct{}, keys ...string) func(context.Context, string, minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	return func(ctx context.Context, _ string, _ minio.ListObjectsOptions) <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo)
		go func() {
			defer close(done)
			defer close(ch)
			for _, k := range keys {
				select {
				case ch <- minio.ObjectInfo{Key: k}:
				case <-ctx.Done():
					return
				}
			}
		}()
		return ch
	}
}

func TestMirror_ListingStopsOnError(t *testing.T) {
	ctx := context.Background()

	t.Run("pull", func(t *testing.T) {
		codec, _, _ := setupCodec(t)
		done := make(chan struct{})

		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "dicts", mock.Anything).
			Return(lister(done, "games.csv", "game-a.csv", "game-b.csv"))
		client.On("GetObject", mock.Anything, "dicts", "games.csv", mock.Anything).
			Return(nil, errors.New("access denied")).Once()

		mirror := NewMirror(codec, client, storage.Config{Bucket: "dicts"}, zap.NewNop())
		_, err := mirror.Pull(ctx, csvDir)
		require.Error(t, err)

		assert.Eventually(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("sync", func(t *testing.T) {
		codec, _, _ := setupCodec(t)
		done := make(chan struct{})

		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "dicts").Return(true, nil)
		client.On("ListObjects", mock.Anything, "dicts", mock.Anything).
			Return(lister(done, "game-a.csv", "game-b.csv"))
		client.On("RemoveObject", mock.Anything, "dicts", "game-a.csv", mock.Anything).
			Return(errors.New("access denied")).Once()

		mirror := NewMirror(codec, client, storage.Config{Bucket: "dicts"}, zap.NewNop())
		require.Error(t, mirror.Sync(ctx, nil))

		assert.Eventually(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})
}

func TestService_PullWithoutMirror(t *testing.T) {
	codec, _, _ := setupCodec(t)
	svc := NewService(codec, codec, csvDir, "/work/export", zap.NewNop())

	_, err := svc.Pull(context.Background(), "")
	assert.ErrorIs(t, err, ErrMirrorDisabled)
}
