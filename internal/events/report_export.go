package events

// ReportExportTopic carries filtered report payloads to the export/email
// collaborators. The payload shape is owned by the report package; the engine
// does not know the destination format.
const ReportExportTopic = "hostel.report.export.v1"
