// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

// amounts are decimal base unit strings; sqlite integers stop at 64 bits
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	user BLOB(20) NOT NULL,
	amount TEXT NOT NULL,
	principal TEXT NOT NULL,
	reward TEXT NOT NULL,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(user, seq);
CREATE INDEX IF NOT EXISTS event_i1 ON event(time);
CREATE INDEX IF NOT EXISTS event_i2 ON event(kind);`
