package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// searchVector performs vector similarity search using cosine similarity
func searchVector(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]QueryResult, error) {
	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, db, queryVector, limit)
	}
	return searchVectorFallback(ctx, db, queryVector, limit)
}

// searchVectorOptimized uses the sqlite-vec extension to compute
// distance at the database layer. vec_distance_cosine returns distance
// (lower is better); similarity is 1 - distance.
func searchVectorOptimized(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]QueryResult, error) {
	if limit <= 0 {
		return []QueryResult{}, nil
	}

	queryBlob := serializeVector(queryVector)

	rows, err := db.QueryContext(ctx, `
		SELECT session_id, project, content, timestamp, chunk_index,
		       1.0 - vec_distance_cosine(embedding, ?) AS similarity
		FROM records
		WHERE dimension = ?
		ORDER BY similarity DESC
		LIMIT ?
	`, queryBlob, len(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]QueryResult, 0, limit)
	for rows.Next() {
		var qr QueryResult
		var ts sql.NullTime
		if err := rows.Scan(&qr.Segment.SessionID, &qr.Segment.Project, &qr.Segment.Content,
			&ts, &qr.Segment.ChunkIndex, &qr.Score); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if ts.Valid {
			qr.Segment.Timestamp = ts.Time
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}

// searchVectorFallback loads all candidate embeddings and computes
// cosine similarity in Go. Used by purego builds.
func searchVectorFallback(ctx context.Context, db *sql.DB, queryVector []float32, limit int) ([]QueryResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT session_id, project, content, timestamp, chunk_index, embedding
		FROM records
		WHERE dimension = ?
	`, len(queryVector))
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []QueryResult
	for rows.Next() {
		var qr QueryResult
		var ts sql.NullTime
		var blob []byte
		if err := rows.Scan(&qr.Segment.SessionID, &qr.Segment.Project, &qr.Segment.Content,
			&ts, &qr.Segment.ChunkIndex, &blob); err != nil {
			return nil, err
		}
		if ts.Valid {
			qr.Segment.Timestamp = ts.Time
		}

		vector := deserializeVector(blob)
		if len(vector) != len(queryVector) {
			continue // dimension mismatch, skip
		}
		qr.Score = cosineSimilarity(queryVector, vector)
		candidates = append(candidates, qr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	return candidates[:limit], nil
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SerializeVector is an exported helper for testing
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}
