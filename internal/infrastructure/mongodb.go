package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Agurato/filmbase/internal/filter"
	"github.com/Agurato/filmbase/internal/model"
)

// Sequence names in the counters collection
const (
	filmsSequence     = "films"
	directorsSequence = "directors"
)

var mongoFields = map[filter.Field]string{
	filter.FieldYear:        "year",
	filter.FieldRunningTime: "running_time",
	filter.FieldWrittenBy:   "written_by",
	filter.FieldProducedBy:  "produced_by",
	filter.FieldStarring:    "starring",
	filter.FieldGenres:      "genres",
}

var mongoOperators = map[filter.Op]string{
	filter.OpEqual:   "$eq",
	filter.OpAtLeast: "$gte",
	filter.OpAtMost:  "$lte",
}

type MongoDB struct {
	client *mongo.Client

	filmsColl     *mongo.Collection
	directorsColl *mongo.Collection
	countersColl  *mongo.Collection
}

// NewMongoDB connects to the server at uri and prepares the collections of database dbName
func NewMongoDB(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("could not ping MongoDB: %w", err)
	}

	mongoDb := mongoClient.Database(dbName)
	m := &MongoDB{
		client:        mongoClient,
		filmsColl:     mongoDb.Collection("films"),
		directorsColl: mongoDb.Collection("directors"),
		countersColl:  mongoDb.Collection("counters"),
	}
	if err := m.createIndexes(connectCtx); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", dbName).Msg("Using MongoDB database")
	return m, nil
}

func (m MongoDB) createIndexes(ctx context.Context) error {
	_, err := m.filmsColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "director_id", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("could not create films indexes: %w", err)
	}
	_, err = m.directorsColl.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}})
	if err != nil {
		return fmt.Errorf("could not create directors index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (m MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// nextID increments and returns the sequence called name
func (m MongoDB) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.countersColl.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("could not get next %s ID: %w", name, err)
	}
	return counter.Seq, nil
}

// filmsFilter renders a predicate as a query on the films collection.
// Director names are resolved to IDs first.
func (m MongoDB) filmsFilter(ctx context.Context, predicate filter.Predicate) (bson.M, error) {
	if predicate.IsEmpty() {
		return bson.M{}, nil
	}
	and := make(bson.A, 0, len(predicate.Conditions))
	for _, c := range predicate.Conditions {
		switch {
		case c.Field == filter.FieldDirector:
			ids, err := m.directorIDsFromName(ctx, c.Text)
			if err != nil {
				return nil, err
			}
			and = append(and, bson.M{"director_id": bson.M{"$in": ids}})
		case c.Op == filter.OpContains:
			and = append(and, bson.M{mongoFields[c.Field]: primitive.Regex{Pattern: regexp.QuoteMeta(c.Text)}})
		case c.Field.IsNumeric():
			and = append(and, bson.M{mongoFields[c.Field]: bson.M{mongoOperators[c.Op]: c.Number}})
		default:
			and = append(and, bson.M{mongoFields[c.Field]: c.Text})
		}
	}
	return bson.M{"$and": and}, nil
}

func (m MongoDB) directorIDsFromName(ctx context.Context, name string) ([]int64, error) {
	directorsCur, err := m.directorsColl.Find(ctx, bson.M{"name": name}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("error while retrieving directors from DB: %w", err)
	}
	var directors []model.DirectorEntity
	if err := directorsCur.All(ctx, &directors); err != nil {
		return nil, fmt.Errorf("error while decoding directors from DB: %w", err)
	}
	ids := make([]int64, 0, len(directors))
	for _, d := range directors {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// AddFilm inserts a film and sets its ID
func (m MongoDB) AddFilm(ctx context.Context, film *model.FilmEntity) error {
	id, err := m.nextID(ctx, filmsSequence)
	if err != nil {
		return err
	}
	film.ID = id
	_, err = m.filmsColl.InsertOne(ctx, film)
	return err
}

// UpdateFilm replaces a film document
func (m MongoDB) UpdateFilm(ctx context.Context, film *model.FilmEntity) error {
	res, err := m.filmsColl.ReplaceOne(ctx, bson.M{"_id": film.ID}, film)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrFilmNotFound
	}
	return nil
}

// DeleteFilm deletes a film document
func (m MongoDB) DeleteFilm(ctx context.Context, id int64) error {
	res, err := m.filmsColl.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount != 1 {
		return model.ErrFilmNotFound
	}
	return nil
}

func (m MongoDB) IsFilmPresent(ctx context.Context, id int64) (bool, error) {
	count, err := m.filmsColl.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return count > 0, err
}

func (m MongoDB) IsFilmTitlePresent(ctx context.Context, title string, excludeID int64) (bool, error) {
	count, err := m.filmsColl.CountDocuments(ctx,
		bson.M{"title": title, "_id": bson.M{"$ne": excludeID}},
		options.Count().SetLimit(1))
	return count > 0, err
}

func (m MongoDB) GetFilmFromID(ctx context.Context, id int64) (*model.FilmEntity, error) {
	var film model.FilmEntity
	err := m.filmsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&film)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrFilmNotFound
	}
	if err != nil {
		return nil, err
	}
	return &film, nil
}

func (m MongoDB) GetFilmsWithDirector(ctx context.Context, directorID int64) ([]model.FilmEntity, error) {
	return m.findFilms(ctx, bson.M{"director_id": directorID}, options.Find().SetSort(bson.M{"_id": 1}))
}

// GetFilmsFiltered returns a page of the films matching the predicate, ordered by ID, and the number of matching films
func (m MongoDB) GetFilmsFiltered(ctx context.Context, predicate filter.Predicate, skip, limit int64) ([]model.FilmEntity, int64, error) {
	query, err := m.filmsFilter(ctx, predicate)
	if err != nil {
		return nil, 0, err
	}
	total, err := m.filmsColl.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("could not count films: %w", err)
	}
	opt := options.Find().
		SetSort(bson.M{"_id": 1}).
		SetSkip(skip).
		SetLimit(limit)
	films, err := m.findFilms(ctx, query, opt)
	return films, total, err
}

// IterateFilmsFiltered calls fn on every film matching the predicate, ordered by ID, reading them from a cursor
func (m MongoDB) IterateFilmsFiltered(ctx context.Context, predicate filter.Predicate, fn func(film *model.FilmEntity) error) error {
	query, err := m.filmsFilter(ctx, predicate)
	if err != nil {
		return err
	}
	filmsCur, err := m.filmsColl.Find(ctx, query, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return fmt.Errorf("error while retrieving films from DB: %w", err)
	}
	defer filmsCur.Close(ctx)

	for filmsCur.Next(ctx) {
		var film model.FilmEntity
		if err := filmsCur.Decode(&film); err != nil {
			return fmt.Errorf("error while decoding film from DB: %w", err)
		}
		if err := fn(&film); err != nil {
			return err
		}
	}
	return filmsCur.Err()
}

func (m MongoDB) findFilms(ctx context.Context, query bson.M, opt *options.FindOptions) ([]model.FilmEntity, error) {
	filmsCur, err := m.filmsColl.Find(ctx, query, opt)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving films from DB: %w", err)
	}
	films := []model.FilmEntity{}
	if err := filmsCur.All(ctx, &films); err != nil {
		return nil, fmt.Errorf("error while decoding films from DB: %w", err)
	}
	return films, nil
}

// AddDirector inserts a director and sets its ID
func (m MongoDB) AddDirector(ctx context.Context, director *model.DirectorEntity) error {
	id, err := m.nextID(ctx, directorsSequence)
	if err != nil {
		return err
	}
	director.ID = id
	_, err = m.directorsColl.InsertOne(ctx, director)
	return err
}

func (m MongoDB) UpdateDirector(ctx context.Context, director *model.DirectorEntity) error {
	res, err := m.directorsColl.UpdateOne(ctx, bson.M{"_id": director.ID}, bson.M{"$set": bson.M{"name": director.Name}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrDirectorNotFound
	}
	return nil
}

// DeleteDirector deletes the films of a director, then the director
func (m MongoDB) DeleteDirector(ctx context.Context, id int64) error {
	if _, err := m.filmsColl.DeleteMany(ctx, bson.M{"director_id": id}); err != nil {
		return fmt.Errorf("could not delete films of director: %w", err)
	}
	res, err := m.directorsColl.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount != 1 {
		return model.ErrDirectorNotFound
	}
	return nil
}

func (m MongoDB) IsDirectorPresent(ctx context.Context, id int64) (bool, error) {
	count, err := m.directorsColl.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return count > 0, err
}

func (m MongoDB) IsDirectorNamePresent(ctx context.Context, name string) (bool, error) {
	count, err := m.directorsColl.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	return count > 0, err
}

func (m MongoDB) GetDirectors(ctx context.Context) ([]model.DirectorEntity, error) {
	return m.findDirectors(ctx, bson.M{})
}

func (m MongoDB) GetDirectorFromID(ctx context.Context, id int64) (*model.DirectorEntity, error) {
	return m.findDirector(ctx, bson.M{"_id": id})
}

func (m MongoDB) GetDirectorFromName(ctx context.Context, name string) (*model.DirectorEntity, error) {
	return m.findDirector(ctx, bson.M{"name": name})
}

func (m MongoDB) GetDirectorsFromIDs(ctx context.Context, ids []int64) ([]model.DirectorEntity, error) {
	if len(ids) == 0 {
		return []model.DirectorEntity{}, nil
	}
	return m.findDirectors(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (m MongoDB) findDirector(ctx context.Context, query bson.M) (*model.DirectorEntity, error) {
	var director model.DirectorEntity
	err := m.directorsColl.FindOne(ctx, query, options.FindOne().SetSort(bson.M{"_id": 1})).Decode(&director)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrDirectorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &director, nil
}

func (m MongoDB) findDirectors(ctx context.Context, query bson.M) ([]model.DirectorEntity, error) {
	directorsCur, err := m.directorsColl.Find(ctx, query, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("error while retrieving directors from DB: %w", err)
	}
	directors := []model.DirectorEntity{}
	if err := directorsCur.All(ctx, &directors); err != nil {
		return nil, fmt.Errorf("error while decoding directors from DB: %w", err)
	}
	return directors, nil
}
