package daq

import (
	"strings"

	"github.com/dune-daq/daqgen/internal/fhicl"
)

// Block markers shared by the event builder and aggregator documents.
const (
	blockNetmonOutput = "netmon_output"
	blockRootOutput   = "root_output"
	blockEnableOnmon  = "enable_onmon"
)

var eventBuilderTemplate = fhicl.MustParse("eventbuilder", `
services: {
  scheduler: {
    fileMode: NOMERGE
  }
  user: {
    NetMonTransportServiceInterface: {
      service_provider: NetMonTransportService
      first_data_receiver_rank: %{ag_rank}
      mpi_buffer_count: %{netmonout_buffer_count}
      max_fragment_size_words: %{size_words}
      data_receiver_count: 1 # %{ag_count}
      #broadcast_sends: true
    }
  }
  Timing: { summaryOnly: true }
  #SimpleMemoryCheck: { }
}

daq: {
  max_fragment_size_words: %{size_words}
  event_builder: {
    mpi_buffer_count: %{eb_buffer_count}
    first_fragment_receiver_rank: 0
    fragment_receiver_count: %{total_frs}
    expected_fragments_per_event: %{total_fragments}
    use_art: true
    print_event_store_stats: true
    verbose: %{verbose}
  }
  metrics: {
    evbFile: {
      metricPluginType: "file"
      level: 3
      fileName: "/tmp/eventbuilder/evb_%UID%_metrics.log"
      uniquify: true
    }
  }
}

outputs: {
  %{netmon_output}rootMPIOutput: {
  %{netmon_output}  module_type: RootMPIOutput
  %{netmon_output}%{trigger_output}
  %{netmon_output}}
  %{root_output}normalOutput: {
  %{root_output}  module_type: RootOutput
  %{root_output}  fileName: "%{output_file}"
  %{root_output}  compressionLevel: 0
  %{root_output}}

}

physics: {
  analyzers: {
%{phys_anal_onmon_cfg}
  }

  %{trigger_code}

  %{enable_onmon}a1: [ app, wf ]

  %{netmon_output}my_output_modules: [ rootMPIOutput ]
  %{root_output}my_output_modules: [ normalOutput ]
  %{trigger_path}
}
source: {
  module_type: RawInput
  waiting_time: 900
  resume_after_timeout: true
  fragment_type_map: [[1, "missed"], [2, "TPC"], [3, "PHOTON"], [4, "TRIGGER"], [5, "TOY1"], [6, "TOY2"]]
}
process_name: DAQ`, fhicl.WithBlocks(blockNetmonOutput, blockRootOutput, blockEnableOnmon))

var aggregatorTemplate = fhicl.MustParse("aggregator", `services: {
  scheduler: {
    fileMode: NOMERGE
    errorOnFailureToPut: true
  }
  user: {
    NetMonTransportServiceInterface: {
      service_provider: NetMonTransportService
      max_fragment_size_words: %{size_words}
    }
  }
  Timing: { summaryOnly: true }
}

daq: {
  max_fragment_size_words: %{size_words}
  aggregator: {
    mpi_buffer_count: %{ag_buffer_count}
    first_event_builder_rank: %{total_frs}
    event_builder_count: %{total_ebs}
    expected_events_per_bunch: %{bunch_size}
    print_event_store_stats: true
    event_queue_depth: %{queue_depth}
    event_queue_wait_time: %{queue_timeout}
    onmon_event_prescale: %{onmon_event_prescale}
    xmlrpc_client_list: "%{xmlrpc_client_list}"
    subrun_size_MB: %{file_size}
    subrun_duration: %{file_duration}
    subrun_event_count: %{file_event_count}
    %{ag_type_param}
  }
  metrics: {
    aggFile: {
      metricPluginType: "file"
      level: 3
      fileName: "/tmp/aggregator/agg_%UID%_metrics.log"
      uniquify: true
    }
  }
}

source: {
  module_type: NetMonInput
}
outputs: {
  %{root_output}normalOutput: {
  %{root_output}  module_type: RootOutput
  %{root_output}  fileName: "%{output_file}"
  %{root_output}    fileSwitch: {
  %{root_output}      boundary: Run
  %{root_output}      force: true
  %{root_output}    }
  %{root_output}}
}
physics: {
  analyzers: {
%{phys_anal_onmon_cfg}
  }

  producers: {

    duneArtdaqBuildInfo: {
    module_type: DuneArtdaqBuildInfo
    }
  }

  p: [ duneArtdaqBuildInfo ]

  %{enable_onmon}a1: %{onmon_modules}

  %{root_output}my_output_modules: [ normalOutput ]
}
process_name: DAQAG`, fhicl.WithBlocks(blockRootOutput, blockEnableOnmon))

var boardReaderTemplate = fhicl.MustParse("boardreader", `daq: {
  max_fragment_size_words: %{size_words}
  fragment_receiver: {
    mpi_sync_interval: 50

%{generator_code}
  }
  metrics: {
    brFile: {
      metricPluginType: "file"
      level: 3
      fileName: "/tmp/boardreader/br_%UID%_metrics.log"
      uniquify: true
    }
  }
}`)

const toyHeader = `    generator: ToySimulator
    fragment_type: %{fragment_type}
    fragment_id: %{fragment_id}
    board_id: %{board_id}
    random_seed: %{random_seed}
    distribution_type: 1
    sleep_on_stop_us: 0`

const receiverHeader = `    generator: %{generator}
    fragment_type: %{fragment_type}
    fragment_id: %{fragment_id}
    board_id: %{board_id}
    sleep_on_stop_us: 500000`

var sspTemplate = fhicl.MustParse("ssp", `    generator: SSP
    fragment_type: %{fragment_type}
    fragment_id: %{fragment_id}
    board_id: %{board_id}
    interface_type: %{interface_type}`)

const wfViewerHeader = `    app: {
      module_type: RootApplication
      force_new: true
    }
    wf: {
      module_type: WFViewer
      fragments_per_board: %{fragments_per_board}
      fragment_receiver_count: %{total_frs}
      fragment_ids: %{fragment_ids}
      fragment_type_labels: %{fragment_type_labels}`

const wfViewerFooter = `    }`

const triggerOutput = `SelectEvents: { SelectEvents: [ ssploose,ssptight,random ] }`

const triggerFilters = `  filters: {
    ssploosehypo:{
      module_type: SSPTrigger
      SspModuleLabel: daq
      CutOnNTriggers: true
      MinNTriggers: 1
      Verbose: false
    }
    ssplooseprescale:{
      module_type: PreScaleTrigger
      PreScale: 10
      UseRndmPreScale: false
    }

    ssptighthypo:{
      module_type: SSPTrigger
      SspModuleLabel: daq
      CutOnNTriggers: true
      MinNTriggers: 2
      Verbose: false
    }
    ssptightprescale:{
      module_type: PreScaleTrigger
      PreScale: 1
      UseRndmPreScale: false
    }

    prescale100:{
      module_type: PreScaleTrigger
      PreScale: 100
      UseRndmPreScale: true
    }
  }

  producers: {

  }`

const triggerPaths = `  ssploose:   [ssploosehypo,ssplooseprescale]
  ssptight:   [ssptighthypo,ssptightprescale]
  random:     [prescale100]`

// withBase joins a generated header, a base template and an optional footer
// into one template text.
func withBase(header, base, footer string) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteByte('\n')
	sb.WriteString(strings.TrimRight(strings.TrimLeft(base, "\n"), "\n"))
	if footer != "" {
		sb.WriteByte('\n')
		sb.WriteString(footer)
	}
	return sb.String()
}
