package mysql

const insertReviewSQL = `
INSERT INTO reviews
  (reviewer_name, reviewer_country, review_title, positive_text, negative_text,
   score, stay_date, room_type, traveler_type)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Same-name ingestion replaces all content fields; reviewer_name is the
// identity key.
const updateReviewSQL = `
UPDATE reviews SET
  reviewer_country = ?,
  review_title     = ?,
  positive_text    = ?,
  negative_text    = ?,
  score            = ?,
  stay_date        = ?,
  room_type        = ?,
  traveler_type    = ?,
  updated_at       = CURRENT_TIMESTAMP
WHERE reviewer_name = ?
`

const getReviewByNameSQL = `
SELECT
  id, reviewer_name, reviewer_country, review_title, positive_text,
  negative_text, score, stay_date, room_type, traveler_type
FROM reviews
WHERE reviewer_name = ?
`

const listReviewsSQL = `
SELECT
  id, reviewer_name, reviewer_country, review_title, positive_text,
  negative_text, score, stay_date, room_type, traveler_type
FROM reviews
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const hasRoleSQL = `
SELECT 1 FROM user_roles WHERE user_id = ? AND role = ? LIMIT 1
`
