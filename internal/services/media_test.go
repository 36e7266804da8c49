package services

import (
	"strings"
	"testing"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/objectstore"
)

func TestMediaInitUploadScopesKeyToOwner(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")

	res, err := h.media.InitUpload(h.as(author), InitUploadInput{
		Kind: "Video", DeclaredContentType: "video/mp4", DeclaredSize: 1024, Filename: "Lecture 1.MP4",
	})
	if err != nil {
		t.Fatalf("InitUpload: %v", err)
	}
	prefix := "media/" + author.ID.String() + "/video/"
	if !strings.HasPrefix(res.ObjectKey, prefix) || !strings.HasSuffix(res.ObjectKey, ".mp4") {
		t.Fatalf("object key: want prefix=%s and .mp4 got=%s", prefix, res.ObjectKey)
	}
	if res.RequiredHeaders["Content-Type"] != "video/mp4" || res.SignedPutURL == "" {
		t.Fatalf("InitUpload: got=%+v", res)
	}

	_, err = h.media.InitUpload(h.as(author), InitUploadInput{Kind: "image", DeclaredContentType: "image/png", DeclaredSize: 1, Filename: "a.png"})
	wantCode(t, "bad kind", err, domainagg.CodeValidation)
}

func TestMediaFinalizeRejectsSizeMismatch(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	key := "media/" + author.ID.String() + "/video/big.mp4"
	h.storage.putObject(objectstore.CategoryMedia, key, "video/mp4", 4_000_000)

	_, err := h.media.FinalizeUpload(h.as(author), FinalizeUploadInput{
		ObjectKey: key, DeclaredSize: 10_000_000, DeclaredContentType: "video/mp4", Kind: "video",
	})
	wantCode(t, "size mismatch", err, domainagg.CodeSizeMismatch)
	if n := h.count(t, &types.MediaAsset{}, "object_key = ?", key); n != 0 {
		t.Fatalf("asset rows after mismatch: want=0 got=%d", n)
	}

	// Drift inside the tolerance is accepted and the verified size wins.
	res, err := h.media.FinalizeUpload(h.as(author), FinalizeUploadInput{
		ObjectKey: key, DeclaredSize: 4_500_000, DeclaredContentType: "video/mp4", Kind: "video",
	})
	if err != nil {
		t.Fatalf("FinalizeUpload within tolerance: %v", err)
	}
	if res.Asset.SizeBytes != 4_000_000 || res.Asset.DeclaredSizeBytes != 4_500_000 {
		t.Fatalf("sizes: got verified=%d declared=%d", res.Asset.SizeBytes, res.Asset.DeclaredSizeBytes)
	}
}

func TestMediaFinalizeIsIdempotent(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	ctx := h.as(author)
	key := "media/" + author.ID.String() + "/doc/notes.pdf"
	h.storage.putObject(objectstore.CategoryMedia, key, "application/pdf", 2048)
	in := FinalizeUploadInput{ObjectKey: key, DeclaredSize: 2048, DeclaredContentType: "application/pdf", Kind: "doc", Title: "Notes"}

	first, err := h.media.FinalizeUpload(ctx, in)
	if err != nil {
		t.Fatalf("FinalizeUpload: %v", err)
	}
	second, err := h.media.FinalizeUpload(ctx, in)
	if err != nil {
		t.Fatalf("FinalizeUpload again: %v", err)
	}
	if !first.Created || second.Created || first.Asset.ID != second.Asset.ID {
		t.Fatalf("idempotency: first=%+v second=%+v", first, second)
	}
	if first.State != domainagg.MediaStateVerified {
		t.Fatalf("state: want=%s got=%s", domainagg.MediaStateVerified, first.State)
	}
	if n := h.count(t, &types.MediaAsset{}, "object_key = ?", key); n != 1 {
		t.Fatalf("asset rows: want=1 got=%d", n)
	}

	assets, err := h.media.ListOwnerAssets(ctx)
	if err != nil || len(assets) != 1 {
		t.Fatalf("ListOwnerAssets: want 1 got=%d err=%v", len(assets), err)
	}
}

func TestMediaFinalizeGuardsKeyAndObject(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	other := h.instructor(t, "other@example.com")
	ctx := h.as(author)

	foreign := "media/" + other.ID.String() + "/video/x.mp4"
	h.storage.putObject(objectstore.CategoryMedia, foreign, "video/mp4", 100)
	_, err := h.media.FinalizeUpload(ctx, FinalizeUploadInput{ObjectKey: foreign, DeclaredSize: 100, DeclaredContentType: "video/mp4", Kind: "video"})
	wantCode(t, "foreign prefix", err, domainagg.CodeForbidden)

	traversal := "media/" + author.ID.String() + "/../" + other.ID.String() + "/video/x.mp4"
	_, err = h.media.FinalizeUpload(ctx, FinalizeUploadInput{ObjectKey: traversal, DeclaredSize: 100, DeclaredContentType: "video/mp4", Kind: "video"})
	wantCode(t, "traversal", err, domainagg.CodeForbidden)

	missing := "media/" + author.ID.String() + "/video/never-uploaded.mp4"
	_, err = h.media.FinalizeUpload(ctx, FinalizeUploadInput{ObjectKey: missing, DeclaredSize: 100, DeclaredContentType: "video/mp4", Kind: "video"})
	wantCode(t, "missing object", err, domainagg.CodeObjectNotFound)

	empty := "media/" + author.ID.String() + "/video/empty.mp4"
	h.storage.putObject(objectstore.CategoryMedia, empty, "video/mp4", 0)
	_, err = h.media.FinalizeUpload(ctx, FinalizeUploadInput{ObjectKey: empty, DeclaredSize: 100, DeclaredContentType: "video/mp4", Kind: "video"})
	wantCode(t, "empty object", err, domainagg.CodeSizeMismatch)
}

func TestMediaFinalizeRejectsKindMismatch(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	ctx := h.as(author)

	videoKey := "media/" + author.ID.String() + "/video/clip.mp4"
	h.storage.putObject(objectstore.CategoryMedia, videoKey, "video/mp4", 100)
	_, err := h.media.FinalizeUpload(ctx, FinalizeUploadInput{ObjectKey: videoKey, DeclaredSize: 100, DeclaredContentType: "application/pdf", Kind: "doc"})
	wantCode(t, "video key finalized as doc", err, domainagg.CodeValidation)

	nested := "media/" + author.ID.String() + "/video/sub/clip.mp4"
	h.storage.putObject(objectstore.CategoryMedia, nested, "video/mp4", 100)
	_, err = h.media.FinalizeUpload(ctx, FinalizeUploadInput{ObjectKey: nested, DeclaredSize: 100, DeclaredContentType: "video/mp4", Kind: "video"})
	wantCode(t, "nested key", err, domainagg.CodeValidation)

	bare := "media/" + author.ID.String() + "/clip.mp4"
	h.storage.putObject(objectstore.CategoryMedia, bare, "video/mp4", 100)
	_, err = h.media.FinalizeUpload(ctx, FinalizeUploadInput{ObjectKey: bare, DeclaredSize: 100, DeclaredContentType: "video/mp4", Kind: "video"})
	wantCode(t, "key without kind segment", err, domainagg.CodeValidation)

	if n := h.count(t, &types.MediaAsset{}, "owner_id = ?", author.ID); n != 0 {
		t.Fatalf("asset rows after rejected keys: want=0 got=%d", n)
	}
}

func TestMediaFinalizeBindsLessonAndGrantsEnrolledDownload(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, 1)
	key := "media/" + author.ID.String() + "/video/lesson.mp4"
	h.storage.putObject(objectstore.CategoryMedia, key, "video/mp4", 1_000_000)

	res, err := h.media.FinalizeUpload(h.as(author), FinalizeUploadInput{
		ObjectKey: key, DeclaredSize: 1_000_000, DeclaredContentType: "video/mp4", Kind: "video",
		Binding: &domainagg.LessonBinding{CourseID: course.ID, LessonID: lessons[0].ID},
	})
	if err != nil {
		t.Fatalf("FinalizeUpload with binding: %v", err)
	}
	if res.State != domainagg.MediaStateBound || res.Lesson == nil || res.Lesson.LessonType != types.LessonVideo {
		t.Fatalf("binding: got state=%s lesson=%+v", res.State, res.Lesson)
	}

	learner := h.learner(t, "learner@example.com")
	_, err = h.media.SignedDownload(h.as(learner), res.Asset.ID)
	wantCode(t, "download without enrollment", err, domainagg.CodeForbidden)

	testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	url, err := h.media.SignedDownload(h.as(learner), res.Asset.ID)
	if err != nil {
		t.Fatalf("SignedDownload enrolled: %v", err)
	}
	if !strings.Contains(url.URL, key) || url.ExpiresAt.IsZero() {
		t.Fatalf("SignedDownload: got=%+v", url)
	}

	intruder := h.instructor(t, "intruder@example.com")
	intruderKey := "media/" + intruder.ID.String() + "/video/hijack.mp4"
	h.storage.putObject(objectstore.CategoryMedia, intruderKey, "video/mp4", 10)
	_, err = h.media.FinalizeUpload(h.as(intruder), FinalizeUploadInput{
		ObjectKey: intruderKey, DeclaredSize: 10, DeclaredContentType: "video/mp4", Kind: "video",
		Binding: &domainagg.LessonBinding{CourseID: course.ID, LessonID: lessons[0].ID},
	})
	wantCode(t, "bind foreign course", err, domainagg.CodeForbidden)
	if n := h.count(t, &types.MediaAsset{}, "object_key = ?", intruderKey); n != 0 {
		t.Fatalf("asset rows after rejected bind: want=0 got=%d", n)
	}
}
