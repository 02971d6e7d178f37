package mcpserver

import "fmt"

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"

	// MetadataCollection holds one entry per collection created through the
	// tool server, with its purpose description.
	MetadataCollection = "__mcp_metadata__"
)

// Config holds the tool server settings.
type Config struct {
	// Name is reported to MCP clients during initialization.
	Name string `yaml:"name" envconfig:"MCP_SERVER_NAME" default:"mcp-server-qdrant"`

	// Version is reported to MCP clients during initialization.
	Version string `yaml:"version" envconfig:"MCP_SERVER_VERSION" default:"0.1.0"`

	// CollectionName pins every tool to one collection. When empty the tools
	// take the collection as a parameter and collection management tools are
	// registered.
	CollectionName string `yaml:"collection_name" envconfig:"COLLECTION_NAME"`

	// ReadOnly hides the tools that write to Qdrant.
	ReadOnly bool `yaml:"read_only" envconfig:"QDRANT_READ_ONLY" default:"false"`

	FindDescription             string `yaml:"find_description" envconfig:"TOOL_FIND_DESCRIPTION" default:"Look up memories in Qdrant. Use this tool when you need to find memories by their content or access them for further analysis."`
	StoreDescription            string `yaml:"store_description" envconfig:"TOOL_STORE_DESCRIPTION" default:"Keep the memory for later use, when you are asked to remember something."`
	ListCollectionsDescription  string `yaml:"list_collections_description" envconfig:"TOOL_LIST_COLLECTIONS_DESCRIPTION" default:"List all the collections in Qdrant along with their purpose descriptions. Use this tool whenever you wonder which collection to use."`
	CreateCollectionDescription string `yaml:"create_collection_description" envconfig:"TOOL_CREATE_COLLECTION_DESCRIPTION" default:"Create a new collection in Qdrant with the given name and purpose description."`

	// Transport is either "stdio" or "sse".
	Transport string `yaml:"transport" envconfig:"MCP_TRANSPORT" default:"stdio"`

	// Address is the listen address of the SSE transport.
	Address string `yaml:"address" envconfig:"MCP_ADDRESS" default:":8000"`
}

// MultiCollection reports whether tools take the collection as a parameter.
func (c Config) MultiCollection() bool {
	return c.CollectionName == ""
}

// Validate checks the transport settings.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportStdio:
	case TransportSSE:
		if c.Address == "" {
			return fmt.Errorf("mcpserver: MCP_ADDRESS is required for the sse transport")
		}
	default:
		return fmt.Errorf("mcpserver: unsupported MCP_TRANSPORT %q (want stdio or sse)", c.Transport)
	}
	if c.CollectionName == MetadataCollection {
		return fmt.Errorf("mcpserver: %s is reserved", MetadataCollection)
	}
	return nil
}
