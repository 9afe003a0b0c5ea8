package test

import (
	"PathVault/internal/dto"
	"PathVault/internal/repo"
	"PathVault/internal/service"
	"PathVault/internal/storage"
	"PathVault/model"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

func cleanFilesTable(t *testing.T) {
	if err := repo.Db.Exec("DELETE FROM files").Error; err != nil {
		t.Fatalf("clean files failed: %v", err)
	}
}

func uploadTestFile(t *testing.T, userID, filePath, name, content string) *model.FileRecord {
	record, err := service.UploadFile(
		context.Background(),
		userID,
		filePath,
		name,
		int64(len(content)),
		strings.NewReader(content),
	)
	if err != nil {
		t.Fatalf("upload %s failed: %v", filePath, err)
	}
	// uploaded_at is the tie breaker for same-path records
	time.Sleep(5 * time.Millisecond)
	return record
}

func blobExists(t *testing.T, id string) bool {
	exists, err := storage.Default.ObjectExists(context.Background(), id)
	if err != nil {
		t.Fatalf("blob existence check failed: %v", err)
	}
	return exists
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	cleanFilesTable(t)

	record := uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "hello pathvault")
	if record.ID == "" {
		t.Fatal("record ID should not be empty")
	}
	if record.FilePath != "/docs/a.txt" {
		t.Fatalf("expect path /docs/a.txt, got %s", record.FilePath)
	}
	if !blobExists(t, record.ID) {
		t.Fatal("blob should exist after upload")
	}

	object, got, err := service.GetDownloadFile(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetDownloadFile failed: %v", err)
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		t.Fatalf("read blob failed: %v", err)
	}
	if string(content) != "hello pathvault" {
		t.Fatalf("expect round-trip content, got %q", string(content))
	}
	if got.FileName != "a.txt" {
		t.Fatalf("expect file name a.txt, got %s", got.FileName)
	}
	if got.FileSize != int64(len("hello pathvault")) {
		t.Fatalf("expect size %d, got %d", len("hello pathvault"), got.FileSize)
	}
}

func TestUploadFolderStylePathAppendsName(t *testing.T) {
	cleanFilesTable(t)

	record := uploadTestFile(t, "u1", "/docs/", "a.txt", "x")
	if record.FilePath != "/docs/a.txt" {
		t.Fatalf("expect /docs/a.txt, got %s", record.FilePath)
	}
}

func TestDownloadMissingBlob(t *testing.T) {
	cleanFilesTable(t)

	record := uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "x")
	if err := storage.Default.RemoveObject(context.Background(), record.ID); err != nil {
		t.Fatal(err)
	}

	_, _, err := service.GetDownloadFile(context.Background(), record.ID)
	if !errors.Is(err, service.ErrBlobMissing) {
		t.Fatalf("expect ErrBlobMissing, got %v", err)
	}
}

func TestListFiles(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/a.txt", "a.txt", "1")
	uploadTestFile(t, "u1", "/b.txt", "b.txt", "2")
	uploadTestFile(t, "u2", "/c.txt", "c.txt", "3")

	files, err := service.ListFiles("u1")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expect 2 files for u1, got %d", len(files))
	}
	// newest first
	if files[0].FileName != "b.txt" || files[1].FileName != "a.txt" {
		t.Fatalf("expect newest-first order [b.txt a.txt], got [%s %s]", files[0].FileName, files[1].FileName)
	}

	all, err := service.ListFiles("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expect 3 files unscoped, got %d", len(all))
	}
}

func TestListFolderEntriesScenario(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")
	uploadTestFile(t, "u1", "/docs/sub/b.txt", "b.txt", "2")
	uploadTestFile(t, "u1", "/other/c.txt", "c.txt", "3")

	entries, err := service.ListFolderEntries(context.Background(), "u1", "/docs")
	if err != nil {
		t.Fatalf("ListFolderEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expect 2 entries, got %d", len(entries))
	}

	if entries[0].Type != dto.EntryTypeFolder || entries[0].Name != "sub" || entries[0].Path != "/docs/sub" {
		t.Fatalf("expect folder entry {FOLDER sub /docs/sub}, got %+v", entries[0])
	}
	if entries[1].Type != dto.EntryTypeFile || entries[1].Name != "a.txt" || entries[1].Path != "/docs/a.txt" {
		t.Fatalf("expect file entry {FILE a.txt /docs/a.txt}, got %+v", entries[1])
	}
	if entries[1].ID == "" || entries[1].FileSize == nil || entries[1].UploadedAt == nil {
		t.Fatal("file entry should carry id, size and upload time")
	}
	if entries[0].ID != "" || entries[0].FileSize != nil {
		t.Fatal("folder entry should not carry id or size")
	}
}

func TestListFolderEntriesRoot(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")
	uploadTestFile(t, "u1", "/other/c.txt", "c.txt", "2")
	uploadTestFile(t, "u1", "/root.txt", "root.txt", "3")

	entries, err := service.ListFolderEntries(context.Background(), "u1", "/")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expect 3 entries at root, got %d", len(entries))
	}
	if entries[0].Name != "docs" || entries[0].Path != "/docs" {
		t.Fatalf("expect first entry {FOLDER docs /docs}, got %+v", entries[0])
	}
	if entries[1].Name != "other" || entries[1].Path != "/other" {
		t.Fatalf("expect second entry {FOLDER other /other}, got %+v", entries[1])
	}
	if entries[2].Type != dto.EntryTypeFile || entries[2].Name != "root.txt" {
		t.Fatalf("expect file root.txt last, got %+v", entries[2])
	}
}

func TestListFolderEntriesFoldersBeforeFiles(t *testing.T) {
	cleanFilesTable(t)

	// "aa.txt" sorts before "zz" alphabetically; folders still come first
	uploadTestFile(t, "u1", "/docs/aa.txt", "aa.txt", "1")
	uploadTestFile(t, "u1", "/docs/zz/b.txt", "b.txt", "2")

	entries, err := service.ListFolderEntries(context.Background(), "u1", "/docs")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expect 2 entries, got %d", len(entries))
	}
	if entries[0].Type != dto.EntryTypeFolder || entries[0].Name != "zz" {
		t.Fatalf("folder should come before file, got %+v", entries[0])
	}
	if entries[1].Type != dto.EntryTypeFile || entries[1].Name != "aa.txt" {
		t.Fatalf("expect file aa.txt second, got %+v", entries[1])
	}
}

func TestListFolderEntriesNameCollision(t *testing.T) {
	cleanFilesTable(t)

	// a file named "report" and a subfolder "report" at the same level
	uploadTestFile(t, "u1", "/docs/report", "report", "1")
	uploadTestFile(t, "u1", "/docs/report/inner.txt", "inner.txt", "2")

	entries, err := service.ListFolderEntries(context.Background(), "u1", "/docs")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expect folder and file to coexist, got %d entries", len(entries))
	}
	if entries[0].Type != dto.EntryTypeFolder || entries[0].Name != "report" {
		t.Fatalf("expect FOLDER report first, got %+v", entries[0])
	}
	if entries[1].Type != dto.EntryTypeFile || entries[1].Name != "report" {
		t.Fatalf("expect FILE report second, got %+v", entries[1])
	}
}

func TestListFolderEntriesUserScoped(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")
	uploadTestFile(t, "u2", "/docs/b.txt", "b.txt", "2")

	entries, err := service.ListFolderEntries(context.Background(), "u1", "/docs")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" {
		t.Fatalf("expect only u1's file, got %+v", entries)
	}
}

func TestMoveFolder(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")
	uploadTestFile(t, "u1", "/docs/sub/b.txt", "b.txt", "2")
	uploadTestFile(t, "u1", "/other/c.txt", "c.txt", "3")
	uploadTestFile(t, "u2", "/private/d.txt", "d.txt", "4")

	updated, err := service.MoveFolder("/docs", "/docs2")
	if err != nil {
		t.Fatalf("MoveFolder failed: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expect 2 rows updated, got %d", updated)
	}

	oldEntries, err := service.ListFolderEntries(context.Background(), "u1", "/docs")
	if err != nil {
		t.Fatal(err)
	}
	if len(oldEntries) != 0 {
		t.Fatalf("old path should be empty, got %d entries", len(oldEntries))
	}

	var moved []model.FileRecord
	if err := repo.Db.Where("user_id = ?", "u1").Order("file_path ASC").Find(&moved).Error; err != nil {
		t.Fatal(err)
	}
	paths := make([]string, 0, len(moved))
	for _, file := range moved {
		paths = append(paths, file.FilePath)
	}
	want := []string{"/docs2/a.txt", "/docs2/sub/b.txt", "/other/c.txt"}
	if len(paths) != len(want) {
		t.Fatalf("expect paths %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("expect paths %v, got %v", want, paths)
		}
	}

	var untouched model.FileRecord
	if err := repo.Db.Where("user_id = ?", "u2").First(&untouched).Error; err != nil {
		t.Fatal(err)
	}
	if untouched.FilePath != "/private/d.txt" {
		t.Fatalf("unrelated user's file moved: %s", untouched.FilePath)
	}
}

func TestMoveFolderNoMatch(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")

	updated, err := service.MoveFolder("/missing", "/elsewhere")
	if err != nil {
		t.Fatalf("MoveFolder failed: %v", err)
	}
	if updated != 0 {
		t.Fatalf("expect 0 rows updated, got %d", updated)
	}
}

func TestMoveFolderExactPathMatch(t *testing.T) {
	cleanFilesTable(t)

	// a file whose full path equals the folder path, no trailing segment
	uploadTestFile(t, "u1", "/docs", "docs", "1")

	updated, err := service.MoveFolder("/docs", "/archive")
	if err != nil {
		t.Fatal(err)
	}
	if updated != 1 {
		t.Fatalf("expect 1 row updated, got %d", updated)
	}

	var record model.FileRecord
	if err := repo.Db.Where("user_id = ?", "u1").First(&record).Error; err != nil {
		t.Fatal(err)
	}
	if record.FilePath != "/archive" {
		t.Fatalf("expect /archive, got %s", record.FilePath)
	}
}

func TestMoveFileTrailingSlashKeepsName(t *testing.T) {
	cleanFilesTable(t)

	record := uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")

	moved, err := service.MoveFile(record.ID, "/archive/")
	if err != nil {
		t.Fatalf("MoveFile failed: %v", err)
	}
	if moved.FilePath != "/archive/a.txt" {
		t.Fatalf("expect /archive/a.txt, got %s", moved.FilePath)
	}
	if moved.FileName != "a.txt" {
		t.Fatalf("move must not rename, got %s", moved.FileName)
	}

	var stored model.FileRecord
	if err := repo.Db.Where("id = ?", record.ID).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.FilePath != "/archive/a.txt" {
		t.Fatalf("expect persisted path /archive/a.txt, got %s", stored.FilePath)
	}
}

func TestMoveFileNotFound(t *testing.T) {
	cleanFilesTable(t)

	_, err := service.MoveFile("no-such-id", "/docs/a.txt")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expect ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	cleanFilesTable(t)

	record := uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")

	deleted, err := service.DeleteFile(context.Background(), "u1", "/docs/a.txt")
	if err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if !deleted {
		t.Fatal("expect deleted = true")
	}
	if blobExists(t, record.ID) {
		t.Fatal("blob should be removed with the record")
	}

	// delete again: not found, no error
	deleted, err = service.DeleteFile(context.Background(), "u1", "/docs/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Fatal("second delete should report not found")
	}
}

func TestDeleteFileLatestWins(t *testing.T) {
	cleanFilesTable(t)

	first := uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "old")
	second := uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "new")

	deleted, err := service.DeleteFile(context.Background(), "u1", "/docs/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("expect deleted = true")
	}

	var remaining model.FileRecord
	if err := repo.Db.Where("user_id = ?", "u1").First(&remaining).Error; err != nil {
		t.Fatal(err)
	}
	if remaining.ID != first.ID {
		t.Fatalf("latest record should go first, expect %s to remain, got %s", first.ID, remaining.ID)
	}
	if blobExists(t, second.ID) {
		t.Fatal("deleted record's blob should be gone")
	}
	if !blobExists(t, first.ID) {
		t.Fatal("remaining record's blob should stay")
	}
}

func TestDeleteFolder(t *testing.T) {
	cleanFilesTable(t)

	docA := uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")
	docB := uploadTestFile(t, "u1", "/docs/sub/b.txt", "b.txt", "2")
	otherC := uploadTestFile(t, "u1", "/other/c.txt", "c.txt", "3")
	foreign := uploadTestFile(t, "u2", "/docs/v.txt", "v.txt", "4")

	deleted, err := service.DeleteFolder(context.Background(), "u1", "/docs")
	if err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expect 2 rows deleted, got %d", deleted)
	}

	var count int64
	if err := repo.Db.Model(&model.FileRecord{}).Where("user_id = ?", "u1").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expect 1 remaining record for u1, got %d", count)
	}

	var foreignStored model.FileRecord
	if err := repo.Db.Where("id = ?", foreign.ID).First(&foreignStored).Error; err != nil {
		t.Fatal("other user's identically-pathed record must survive:", err)
	}

	if blobExists(t, docA.ID) || blobExists(t, docB.ID) {
		t.Fatal("deleted folder's blobs should be removed")
	}
	if !blobExists(t, otherC.ID) || !blobExists(t, foreign.ID) {
		t.Fatal("unrelated blobs must stay")
	}
}

func TestDeleteFolderEmpty(t *testing.T) {
	cleanFilesTable(t)

	deleted, err := service.DeleteFolder(context.Background(), "u1", "/nothing")
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Fatalf("expect 0 rows deleted, got %d", deleted)
	}
}

func TestSearchFiles(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/docs/report-2025.pdf", "report-2025.pdf", "1")
	uploadTestFile(t, "u1", "/docs/notes.txt", "notes.txt", "2")
	uploadTestFile(t, "u2", "/docs/report-old.pdf", "report-old.pdf", "3")

	files, err := service.SearchFiles("u1", "report")
	if err != nil {
		t.Fatalf("SearchFiles failed: %v", err)
	}
	if len(files) != 1 || files[0].FileName != "report-2025.pdf" {
		t.Fatalf("expect only u1's report, got %+v", files)
	}
}

func TestBuildFolderArchiveEntries(t *testing.T) {
	cleanFilesTable(t)

	uploadTestFile(t, "u1", "/docs/a.txt", "a.txt", "1")
	uploadTestFile(t, "u1", "/docs/sub/b.txt", "b.txt", "2")
	uploadTestFile(t, "u1", "/other/c.txt", "c.txt", "3")

	entries, err := service.BuildFolderArchiveEntries("u1", "/docs")
	if err != nil {
		t.Fatalf("BuildFolderArchiveEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expect 2 archive entries, got %d", len(entries))
	}
	if entries[0].ZipPath != "a.txt" || entries[1].ZipPath != "sub/b.txt" {
		t.Fatalf("expect zip paths [a.txt sub/b.txt], got [%s %s]", entries[0].ZipPath, entries[1].ZipPath)
	}
}
