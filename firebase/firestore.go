package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/utilities"
)

// Firestore caps a write batch at 500 operations.
const deleteBatchSize = 500

// TaskStore keeps tasks as documents of a single top-level collection,
// one document per task, owned through the userId field.
type TaskStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewTaskStore(client *firestore.Client, collection string) *TaskStore {
	if collection == "" {
		collection = "tasks"
	}
	return &TaskStore{client: client, collection: collection, now: time.Now}
}

func (s *TaskStore) tasks() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// ownerQuery needs the composite index (userId asc, createdAt desc).
func (s *TaskStore) ownerQuery(userID string) firestore.Query {
	return s.tasks().Where("userId", "==", userID).OrderBy("createdAt", firestore.Desc)
}

func (s *TaskStore) Create(ctx context.Context, t models.Task) (string, error) {
	t.CreatedAt = s.now()
	ref, _, err := s.tasks().Add(ctx, t)
	if err != nil {
		return "", fmt.Errorf("error creating task in Firestore: %w", err)
	}
	return ref.ID, nil
}

func (s *TaskStore) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	updates := patchUpdates(patch)
	if len(updates) == 0 {
		return nil
	}
	if _, err := s.tasks().Doc(id).Update(ctx, updates); err != nil {
		return mapError(err, id, "updating")
	}
	return nil
}

// Delete fails with ErrTaskNotFound for unknown ids; a plain document
// delete in Firestore would succeed silently.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if _, err := s.tasks().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return mapError(err, id, "deleting")
	}
	return nil
}

func (s *TaskStore) List(ctx context.Context, userID string) ([]models.Task, error) {
	docs, err := s.ownerQuery(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("error listing tasks of user %s: %w", userID, err)
	}
	return decodeTasks(docs)
}

// Subscribe streams query snapshots to fn from a background goroutine until
// the returned func is called or ctx ends. The first snapshot arrives as soon
// as Firestore delivers it. If the listener fails for any other reason,
// onErr (when set) is called once with the error and no more snapshots
// follow.
func (s *TaskStore) Subscribe(ctx context.Context, userID string, fn func([]models.Task), onErr func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	it := s.ownerQuery(userID).Snapshots(ctx)

	go streamSnapshots(ctx, querySnapshots{it}, userID, fn, onErr)

	return cancel, nil
}

// snapshotSource yields the documents of successive query snapshots.
type snapshotSource interface {
	next() ([]*firestore.DocumentSnapshot, error)
	stop()
}

type querySnapshots struct {
	it *firestore.QuerySnapshotIterator
}

func (q querySnapshots) next() ([]*firestore.DocumentSnapshot, error) {
	snap, err := q.it.Next()
	if err != nil {
		return nil, err
	}
	return snap.Documents.GetAll()
}

func (q querySnapshots) stop() { q.it.Stop() }

func streamSnapshots(ctx context.Context, src snapshotSource, userID string, fn func([]models.Task), onErr func(error)) {
	defer src.stop()
	for {
		docs, err := src.next()
		if err != nil {
			if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return
			}
			utilities.LogError(err, fmt.Sprintf("Task snapshot stream for user %s stopped", userID))
			if onErr != nil {
				onErr(fmt.Errorf("task snapshot stream for user %s: %w", userID, err))
			}
			return
		}
		tasks, err := decodeTasks(docs)
		if err != nil {
			utilities.LogError(err, fmt.Sprintf("Decoding task snapshot for user %s", userID))
			continue
		}
		fn(tasks)
	}
}

// DeleteAllForUser deletes every task of userID in batches and returns the
// number of deleted documents.
func (s *TaskStore) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	query := s.tasks().Where("userId", "==", userID)
	total := 0

	for {
		iter := query.Limit(deleteBatchSize).Documents(ctx)
		numDeleted := 0

		batch := s.client.Batch()
		for {
			doc, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				iter.Stop()
				return total, fmt.Errorf("error iterating tasks of user %s for deletion: %w", userID, err)
			}
			batch.Delete(doc.Ref)
			numDeleted++
		}
		iter.Stop()

		if numDeleted == 0 {
			break
		}

		if _, err := batch.Commit(ctx); err != nil {
			return total, fmt.Errorf("error deleting task batch of user %s: %w", userID, err)
		}
		total += numDeleted
		utilities.LogDebug("Deleted %d tasks of user %s from Firestore", numDeleted, userID)
	}

	return total, nil
}

func decodeTasks(docs []*firestore.DocumentSnapshot) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		var t models.Task
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("error decoding task %s: %w", doc.Ref.ID, err)
		}
		t.ID = doc.Ref.ID
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// patchUpdates turns a patch into field updates. Clearing an optional date
// field or the dependency list deletes the field from the document.
func patchUpdates(p models.TaskPatch) []firestore.Update {
	var updates []firestore.Update
	set := func(path string, v interface{}) {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}
	optional := func(path, v string) {
		if v == "" {
			set(path, firestore.Delete)
			return
		}
		set(path, v)
	}

	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Priority != nil {
		set("priority", string(*p.Priority))
	}
	if p.Date != nil {
		set("date", *p.Date)
	}
	if p.DueDate != nil {
		optional("dueDate", *p.DueDate)
	}
	if p.EndDateTime != nil {
		optional("endDateTime", *p.EndDateTime)
	}
	if p.DependsOn != nil {
		if len(*p.DependsOn) == 0 {
			set("dependsOn", firestore.Delete)
		} else {
			set("dependsOn", *p.DependsOn)
		}
	}
	return updates
}

func mapError(err error, id, action string) error {
	if status.Code(err) == codes.NotFound {
		return models.ErrTaskNotFound
	}
	return fmt.Errorf("error %s task %s in Firestore: %w", action, id, err)
}
