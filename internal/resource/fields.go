package resource

// Field describes one column/form input of a resource family. Forms and
// tables are driven by this data, not by per-resource code.
type Field struct {
	Key      string
	Label    string
	Type     string // "text" | "date" | "select" | "number"
	Options  []string
	Required bool
	AltKey   string // fallback key for backends that mix naming styles
}

// Descriptor binds a resource key to its endpoint and ordered fields.
type Descriptor struct {
	Key      string
	Title    string
	Endpoint string
	Fields   []Field
}

var severityScale = []string{"low", "medium", "high", "critical", "very_high"}

var registry = []Descriptor{
	{
		Key: "documents", Title: "Documentos", Endpoint: "/documents",
		Fields: []Field{
			{Key: "originalname", Label: "Nombre", Type: "text", Required: true, AltKey: "filename"},
			{Key: "type", Label: "Tipo", Type: "text"},
			{Key: "version", Label: "Versión", Type: "text"},
			{Key: "status", Label: "Estado", Type: "select", Options: []string{"vigente", "obsoleto", "en_revision"}},
			{Key: "visibility", Label: "Visibilidad", Type: "select", Options: []string{"institutional", "process"}},
			{Key: "processId", Label: "Proceso", Type: "text", AltKey: "process_id"},
		},
	},
	{
		Key: "document-types", Title: "Tipos de documento", Endpoint: "/document-types",
		Fields: []Field{
			{Key: "name", Label: "Nombre", Type: "text", Required: true},
			{Key: "description", Label: "Descripción", Type: "text"},
		},
	},
	{
		Key: "risks", Title: "Riesgos", Endpoint: "/risks",
		Fields: []Field{
			{Key: "title", Label: "Título", Type: "text", Required: true},
			{Key: "severity", Label: "Severidad", Type: "select", Options: severityScale, Required: true},
			{Key: "probability", Label: "Probabilidad", Type: "select", Options: severityScale, Required: true},
			{Key: "status", Label: "Estado", Type: "select", Options: []string{"open", "mitigated", "closed"}},
			{Key: "process_name", Label: "Proceso", Type: "text", AltKey: "processName"},
		},
	},
	{
		Key: "actions", Title: "Planes de acción", Endpoint: "/actions",
		Fields: []Field{
			{Key: "title", Label: "Título", Type: "text", Required: true},
			{Key: "responsible", Label: "Responsable", Type: "text"},
			{Key: "status", Label: "Estado", Type: "select", Options: []string{"pending", "in_progress", "done"}},
			{Key: "dueDate", Label: "Vence", Type: "date", AltKey: "due_date"},
		},
	},
	{
		Key: "indicators", Title: "Indicadores", Endpoint: "/indicators",
		Fields: []Field{
			{Key: "name", Label: "Nombre", Type: "text", Required: true},
			{Key: "target", Label: "Meta", Type: "number"},
			{Key: "value", Label: "Valor", Type: "number"},
			{Key: "unit", Label: "Unidad", Type: "text"},
			{Key: "process_name", Label: "Proceso", Type: "text", AltKey: "processName"},
		},
	},
	{
		Key: "committees", Title: "Comités", Endpoint: "/committees",
		Fields: []Field{
			{Key: "name", Label: "Nombre", Type: "text", Required: true},
			{Key: "chair", Label: "Preside", Type: "text"},
			{Key: "periodicity", Label: "Periodicidad", Type: "text"},
		},
	},
	{
		Key: "committee-sessions", Title: "Sesiones de comité", Endpoint: "/committee-sessions",
		Fields: []Field{
			{Key: "committee", Label: "Comité", Type: "text", Required: true},
			{Key: "date", Label: "Fecha", Type: "date"},
			{Key: "status", Label: "Estado", Type: "select", Options: []string{"scheduled", "held", "cancelled"}},
		},
	},
	{
		Key: "commitments", Title: "Compromisos", Endpoint: "/commitments",
		Fields: []Field{
			{Key: "description", Label: "Descripción", Type: "text", Required: true},
			{Key: "responsible", Label: "Responsable", Type: "text"},
			{Key: "status", Label: "Estado", Type: "select", Options: []string{"pending", "done"}},
			{Key: "dueDate", Label: "Vence", Type: "date", AltKey: "due_date"},
		},
	},
	{
		Key: "processes", Title: "Procesos", Endpoint: "/processes",
		Fields: []Field{
			{Key: "name", Label: "Nombre", Type: "text", Required: true},
			{Key: "category", Label: "Categoría", Type: "select", Options: []string{
				"direccionamiento_estrategico", "proceso_misional", "proceso_apoyo", "proceso_evaluacion",
			}},
			{Key: "leader", Label: "Líder", Type: "text"},
		},
	},
	{
		Key: "ecosystem", Title: "Ecosistema", Endpoint: "/ecosystem",
		Fields: []Field{
			{Key: "name", Label: "Nombre", Type: "text", Required: true},
			{Key: "kind", Label: "Tipo", Type: "text"},
			{Key: "contact", Label: "Contacto", Type: "text"},
		},
	},
	{
		Key: "support", Title: "Soporte", Endpoint: "/support",
		Fields: []Field{
			{Key: "subject", Label: "Asunto", Type: "text", Required: true},
			{Key: "description", Label: "Descripción", Type: "text"},
			{Key: "status", Label: "Estado", Type: "select", Options: []string{"open", "in_progress", "closed"}},
			{Key: "priority", Label: "Prioridad", Type: "select", Options: []string{"low", "medium", "high"}},
		},
	},
	{
		Key: "users", Title: "Usuarios", Endpoint: "/users",
		Fields: []Field{
			{Key: "username", Label: "Usuario", Type: "text", Required: true},
			{Key: "name", Label: "Nombre", Type: "text"},
			{Key: "email", Label: "Correo", Type: "text"},
		},
	},
	{
		Key: "catalogs", Title: "Catálogos", Endpoint: "/catalogs",
		Fields: []Field{
			{Key: "key", Label: "Clave", Type: "text", Required: true},
			{Key: "value", Label: "Valor", Type: "text", Required: true},
			{Key: "group", Label: "Grupo", Type: "text"},
		},
	},
}

// Registry returns all resource descriptors in display order.
func Registry() []Descriptor {
	return registry
}

// Lookup finds a descriptor by resource key.
func Lookup(key string) (Descriptor, bool) {
	for _, descriptor := range registry {
		if descriptor.Key == key {
			return descriptor, true
		}
	}
	return Descriptor{}, false
}
