package handlers

// PatientIDKey is the gin context key carrying the authenticated patient
// id. The edge proxy authenticates the session and forwards the id in the
// X-Patient-ID header; this service treats it as trusted input.
const PatientIDKey = "patientID"
