package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vaultsentry/vaultsentry/internal/remediation"
	"github.com/vaultsentry/vaultsentry/internal/threat"
	"github.com/vaultsentry/vaultsentry/internal/triage"
)

// ErrVaultNotFound is returned when a vault id resolves to no vault row.
var ErrVaultNotFound = errors.New("vault not found")

// ActivityStore reads vault activity and live vault state from the vault
// application's PostgreSQL database, and executes protective actions by
// updating it. It implements the engine's AccessLogSource,
// DocumentSource, VaultStateSource and ActionExecutor collaborators.
type ActivityStore struct {
	db *pgxpool.Pool
}

// NewActivity creates an ActivityStore on the given pool.
func NewActivity(db *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{db: db}
}

// FetchAccessLogs returns the vault's access log entries, oldest first.
func (s *ActivityStore) FetchAccessLogs(ctx context.Context, vaultID uuid.UUID) ([]threat.AccessLogEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ts, latitude, longitude, access_type, user_id
		FROM vault_access_logs
		WHERE vault_id = $1
		ORDER BY ts ASC`, vaultID)
	if err != nil {
		return nil, fmt.Errorf("%w: query access logs: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var logs []threat.AccessLogEntry
	for rows.Next() {
		var e threat.AccessLogEntry
		if err := rows.Scan(&e.Timestamp, &e.Latitude, &e.Longitude, &e.AccessType, &e.UserID); err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

// FetchDocuments returns the vault's document metadata.
func (s *ActivityStore) FetchDocuments(ctx context.Context, vaultID uuid.UUID) ([]threat.DocumentMeta, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, tags, doc_type, uploaded_at, COALESCE(content_hash, ''), COALESCE(extracted_text, '')
		FROM vault_documents
		WHERE vault_id = $1 AND NOT redacted
		ORDER BY uploaded_at ASC`, vaultID)
	if err != nil {
		return nil, fmt.Errorf("%w: query documents: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var docs []threat.DocumentMeta
	for rows.Next() {
		var d threat.DocumentMeta
		if err := rows.Scan(&d.ID, &d.Tags, &d.DocType, &d.UploadedAt, &d.Hash, &d.ExtractedText); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// FetchVaultState assembles the live state the triage validator runs
// against: lock status, ownership, current session token, and the id sets
// for documents, revoked nominees and revoked sessions.
func (s *ActivityStore) FetchVaultState(ctx context.Context, vaultID uuid.UUID) (triage.VaultState, error) {
	state := triage.VaultState{
		VaultID:         vaultID,
		DocumentIDs:     make(map[uuid.UUID]struct{}),
		RevokedNominees: make(map[uuid.UUID]struct{}),
		RevokedSessions: make(map[uuid.UUID]struct{}),
	}

	err := s.db.QueryRow(ctx, `
		SELECT status, owner_id, COALESCE(current_session_token, '')
		FROM vaults WHERE id = $1`, vaultID,
	).Scan(&state.Status, &state.OwnerID, &state.SessionToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return state, ErrVaultNotFound
	}
	if err != nil {
		return state, fmt.Errorf("%w: query vault: %v", ErrUnavailable, err)
	}
	// The engine validates on behalf of the owner.
	state.CallerID = state.OwnerID

	if err := s.collectIDs(ctx, &state.DocumentIDs,
		`SELECT id FROM vault_documents WHERE vault_id = $1 AND NOT redacted`, vaultID); err != nil {
		return state, err
	}
	if err := s.collectIDs(ctx, &state.RevokedNominees,
		`SELECT nominee_id FROM vault_nominees WHERE vault_id = $1 AND revoked`, vaultID); err != nil {
		return state, err
	}
	if err := s.collectIDs(ctx, &state.RevokedSessions,
		`SELECT id FROM vault_sessions WHERE vault_id = $1 AND revoked`, vaultID); err != nil {
		return state, err
	}
	return state, nil
}

func (s *ActivityStore) collectIDs(ctx context.Context, dst *map[uuid.UUID]struct{}, query string, vaultID uuid.UUID) error {
	rows, err := s.db.Query(ctx, query, vaultID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan id: %w", err)
		}
		(*dst)[id] = struct{}{}
	}
	return rows.Err()
}

// ExecuteAction applies a validated remediation action to the database.
func (s *ActivityStore) ExecuteAction(ctx context.Context, action remediation.RemediationAction) error {
	var err error
	switch action.Kind {
	case remediation.KindLockVault:
		_, err = s.db.Exec(ctx,
			`UPDATE vaults SET status = 'locked', locked_at = now() WHERE id = $1`,
			action.VaultID)
	case remediation.KindRequireDualKey:
		_, err = s.db.Exec(ctx,
			`UPDATE vaults SET dual_key_required = TRUE WHERE id = $1`,
			action.VaultID)
	case remediation.KindRedactDocuments:
		_, err = s.db.Exec(ctx,
			`UPDATE vault_documents SET redacted = TRUE WHERE vault_id = $1 AND id = ANY($2)`,
			action.VaultID, action.DocumentIDs)
	case remediation.KindRevokeNominees:
		_, err = s.db.Exec(ctx,
			`UPDATE vault_nominees SET revoked = TRUE WHERE vault_id = $1 AND nominee_id = ANY($2)`,
			action.VaultID, action.NomineeIDs)
	case remediation.KindRevokeSession:
		_, err = s.db.Exec(ctx,
			`UPDATE vault_sessions SET revoked = TRUE WHERE vault_id = $1 AND ($2 = '00000000-0000-0000-0000-000000000000'::uuid OR id = $2)`,
			action.VaultID, action.SessionID)
	case remediation.KindBlockIP:
		_, err = s.db.Exec(ctx,
			`INSERT INTO blocked_ips (vault_id, ip, blocked_at) VALUES ($1, $2, now()) ON CONFLICT DO NOTHING`,
			action.VaultID, action.IP)
	case remediation.KindEnableMonitor:
		_, err = s.db.Exec(ctx,
			`UPDATE vaults SET enhanced_monitoring = TRUE WHERE id = $1`,
			action.VaultID)
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
	if err != nil {
		return fmt.Errorf("%w: execute %s: %v", ErrUnavailable, action.Kind, err)
	}
	return nil
}
