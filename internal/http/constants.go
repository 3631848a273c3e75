package httpx

// User-facing messages. The API speaks Italian to its clients.
const (
	msgAudioMissing     = "File audio non trovato"
	msgAudioTooLarge    = "File troppo grande. Massimo 200MB."
	msgAudioUnsupported = "Tipo di file non supportato. Usa MP3, WAV, M4A, AAC o OGG."
	msgTextInvalid      = "Testo di trascrizione mancante o non valido"
	msgTextTooShort     = "Testo troppo breve per generare un riassunto significativo"
	msgBodyTooLarge     = "Richiesta troppo grande."
	msgInvalidJSON      = "Corpo JSON non valido"
	msgEmptyBody        = "Corpo della richiesta vuoto"
	msgInvalidForm      = "Richiesta multipart non valida"
	msgJobIDMissing     = "ID job mancante"
	msgInternal         = "Errore interno del server"
)

// Per-operation fallbacks for upstream failures without a specific message.
const (
	msgTranscribeFailed = "Errore interno del server durante la trascrizione"
	msgSummarizeFailed  = "Errore interno del server durante la generazione del riassunto"
	msgElaborateFailed  = "Errore interno del server durante la rielaborazione"
	msgConceptMapFailed = "Errore interno del server durante la generazione della mappa concettuale"
	msgQuizFailed       = "Errore interno del server durante la generazione del quiz"
)

// minSummaryChars is the shortest transcript /summarize accepts.
const minSummaryChars = 50

// Form field names of the multipart endpoints.
const (
	fieldAudio    = "audio"
	fieldLanguage = "language"
	fieldUserID   = "userId"
)
