package postgres

const eventColumns = `
id, title, annotation, description, category_id, initiator_id,
lat, lon, event_date, paid, participant_limit, request_moderation,
state, published_on, views, confirmed_requests, created_on, updated_at`

const insertEventSQL = `
INSERT INTO events (
  id, title, annotation, description, category_id, initiator_id,
  lat, lon, event_date, paid, participant_limit, request_moderation,
  state, published_on, views, confirmed_requests, created_on, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`

const getEventSQL = `
SELECT ` + eventColumns + `
FROM events WHERE id = $1
`

const getEventForUpdateSQL = getEventSQL + `FOR UPDATE
`

const updateEventSQL = `
UPDATE events SET
  title=$2, annotation=$3, description=$4, category_id=$5,
  lat=$6, lon=$7, event_date=$8, paid=$9,
  participant_limit=$10, request_moderation=$11,
  state=$12, published_on=$13, views=$14, confirmed_requests=$15,
  updated_at=$16
WHERE id=$1
`

const requestColumns = `id, requester_id, event_id, status, created_on`

const insertRequestSQL = `
INSERT INTO participation_requests (id, requester_id, event_id, status, created_on)
VALUES ($1,$2,$3,$4,$5)
`

const updateRequestSQL = `
UPDATE participation_requests SET status = $2 WHERE id = $1
`

const insertOutboxSQL = `
INSERT INTO outbox (message_id, routing_key, body, created_at, status, next_retry_at)
VALUES ($1, $2, $3, $4, 'pending', $4)
`
